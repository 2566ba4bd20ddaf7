package codec

// settings collects every codec knob; each entry point reads only the ones
// that apply to it.
type settings struct {
	maxRows    int
	autoDetect bool
	compress   bool
	expect     []string
}

// Option configures Save, Load and the stream codecs.
type Option func(*settings)

// WithMaxRows splits Save output into chunk files of at most n rows each.
// Zero writes a single file.
func WithMaxRows(n int) Option {
	return func(s *settings) { s.maxRows = n }
}

// WithAutoDetect makes Load detect and apply column types after all inputs
// are merged.
func WithAutoDetect() Option {
	return func(s *settings) { s.autoDetect = true }
}

// WithCompression toggles snappy compression of binary payloads. It is on
// by default.
func WithCompression(on bool) Option {
	return func(s *settings) { s.compress = on }
}

// ExpectColumns makes decoders reject inputs whose column list differs.
func ExpectColumns(columns []string) Option {
	return func(s *settings) { s.expect = columns }
}

func buildSettings(opts []Option) settings {
	s := settings{compress: true}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
