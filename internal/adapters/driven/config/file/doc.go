// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML or YAML configuration storage, flattened to dot keys
//   - PromptStore: user-editable generation prompts
package file
