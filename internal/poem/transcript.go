package poem

import "strings"

const separator = "------------------------------------------"

// transcript renders a scripted conversation as plain text:
//
//	[User]: question
//
//	[LLM]: answer
//
//
//	------------------------------------------
type transcript struct {
	b strings.Builder
}

func (t *transcript) exchange(speaker, question, answer string) {
	t.b.WriteString("[" + speaker + "]: " + question + "\n\n")
	t.b.WriteString("[LLM]: " + answer)
}

func (t *transcript) separate() {
	t.b.WriteString("\n\n\n" + separator + "\n\n\n")
}

func (t *transcript) String() string {
	return t.b.String()
}
