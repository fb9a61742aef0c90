package rename

// Pair maps one directory name under the root to its normalized name.
// Both sides are single path elements.
type Pair struct {
	// Source is the human-readable folder name as delivered.
	Source string `json:"source" yaml:"source"`
	// Target is the ASCII snake_case name it is renamed to.
	Target string `json:"target" yaml:"target"`
}

// DefaultRoot is the parent directory every Pair is resolved against.
const DefaultRoot = "arquivos"

// CompletionMessage is printed once at the end of every run.
const CompletionMessage = "Renomeação concluída!"

// DefaultPairs returns the fixed rename table, in execution order.
func DefaultPairs() []Pair {
	return []Pair{
		{Source: "Cidades de Atuação", Target: "cidades_de_atuacao"},
		{Source: "Painel de Precificação", Target: "painel_de_precificacao"},
		{Source: "Beneficiários", Target: "beneficiarios"},
		{Source: "PrestadorasAcreditadas", Target: "prestadoras_acreditadas"},
		{Source: "SIP", Target: "sip"},
		{Source: "TUSS", Target: "tuss"},
		{Source: "TaxaCobertura", Target: "taxa_cobertura"},
		{Source: "Valores", Target: "valores"},
	}
}
