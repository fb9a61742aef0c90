// Command ans-renamer normalizes the folder names of the ANS data tree.
package main

import "github.com/oshokin/ans-renamer/cmd/ans-renamer/cmd"

func main() {
	cmd.Execute()
}
