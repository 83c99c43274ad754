// Parley CLI entry point
//
// Parley is a terminal chat client for LLMs hosted on Azure OpenAI and
// AWS Bedrock. It keeps multiple conversations open at once, estimates
// token usage per model, and persists transcripts as portable JSON.
package main

import "github.com/jbctechsolutions/parley/internal/presentation/cli/commands"

func main() {
	commands.Execute()
}
