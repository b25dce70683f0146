package lexer

import (
	"fmt"

	"github.com/cfgscript/cfg/token"
)

// Error is the tokenizer's single error kind (spec: "All tokenizer
// errors are a single 'tokenizer failed' kind with an explanatory
// message and a Location"). The tokenizer is not resumable after
// returning one.
type Error struct {
	Loc     token.Location
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Message)
}
