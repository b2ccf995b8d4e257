package block

import (
	"rmspp/internal/source"
	"rmspp/internal/token"
)

// Kind tags the variant stored in a Block.
type Kind uint8

const (
	Root Kind = iota
	Repeat
	Header
	Literal
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "Root"
	case Repeat:
		return "Repeat"
	case Header:
		return "Header"
	case Literal:
		return "Literal"
	default:
		return "Kind(?)"
	}
}

// Block is one node of the document tree.
//
// Root and Repeat own Children. Literal owns a run of Tokens. Header keeps
// the opaque Raw body between its markers.
type Block struct {
	Kind Kind
	Span source.Span

	// Open is the opening directive (#REPEAT, #HEADER_START).
	Open token.Token
	// Args are the tokens between the parentheses of #REPEAT(...).
	Args []token.Token
	// Malformed is set when the argument list is missing or unclosed;
	// the structurer has already reported it.
	Malformed bool
	// Count is filled by the symbol resolver. Negative means unresolved.
	Count int

	// Close stands in for #END_REPEAT: an Elided token with its trivia.
	Close token.Token

	Raw string

	Tokens   []token.Token
	Children []*Block
}

// NewLiteral wraps a token run.
func NewLiteral(toks []token.Token) *Block {
	b := &Block{Kind: Literal, Tokens: toks}
	if len(toks) > 0 {
		b.Span = toks[0].Span.Cover(toks[len(toks)-1].Span)
	}
	return b
}

// Clone returns a deep copy; clones share no tokens or children with b.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	c := *b
	c.Open = b.Open.Clone()
	c.Close = b.Close.Clone()
	c.Args = token.CloneTokens(b.Args)
	c.Tokens = token.CloneTokens(b.Tokens)
	if b.Children != nil {
		c.Children = make([]*Block, len(b.Children))
		for i, ch := range b.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// Walk visits b and its descendants in document order. Returning false
// from fn skips the children of that block.
func Walk(b *Block, fn func(*Block) bool) {
	if b == nil || !fn(b) {
		return
	}
	for _, ch := range b.Children {
		Walk(ch, fn)
	}
}

// Flatten returns the tokens of the tree in document order. Header bodies
// are skipped; Repeat blocks contribute their body followed by Close.
func Flatten(b *Block) []token.Token {
	var out []token.Token
	var rec func(*Block)
	rec = func(b *Block) {
		switch b.Kind {
		case Literal:
			out = append(out, b.Tokens...)
		case Header:
		case Repeat:
			for _, ch := range b.Children {
				rec(ch)
			}
			out = append(out, b.Close)
		default:
			for _, ch := range b.Children {
				rec(ch)
			}
		}
	}
	if b != nil {
		rec(b)
	}
	return out
}

// Headers returns the Header blocks in source order.
func Headers(b *Block) []*Block {
	var out []*Block
	Walk(b, func(x *Block) bool {
		if x.Kind == Header {
			out = append(out, x)
			return false
		}
		return true
	})
	return out
}

// Elide turns a consumed marker into a placeholder that keeps only the
// marker's leading trivia.
func Elide(t token.Token) token.Token {
	return token.Token{
		Kind:    token.Elided,
		Span:    source.Span{File: t.Span.File, Start: t.Span.Start, End: t.Span.Start},
		Leading: t.Leading,
	}
}
