package questionbank

import (
	_ "embed"
	"sync"
)

//go:embed default_bank.yaml
var defaultBankYAML []byte

var defaultBank = sync.OnceValue(func() *Bank {
	b, err := Parse(defaultBankYAML, FormatYAML)
	if err != nil {
		panic("questionbank: embedded default bank is invalid: " + err.Error())
	}
	return b
})

// Default returns the bank compiled into the binary.
func Default() *Bank {
	return defaultBank()
}
