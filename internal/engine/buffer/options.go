package buffer

import "golang.org/x/text/unicode/norm"

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithNormalization puts all incoming text into the given Unicode normal form
// before it is stored.
func WithNormalization(form norm.Form) Option {
	return func(b *Buffer) {
		b.normalize = true
		b.form = form
	}
}

// WithNFC configures the buffer to store text in NFC.
func WithNFC() Option {
	return WithNormalization(norm.NFC)
}
