package jsonval

// EncodeControl accompanies every encode call. It selects the destination profile
// and carries the key quoting policy of the process Encoder.
type EncodeControl struct {
	toRepository bool
	lenient      bool
}

var (
	// ForClient encodes for transmission to a remote peer, with quoted keys
	ForClient = EncodeControl{}
	// ForRepository encodes for durable storage, with quoted keys
	ForRepository = EncodeControl{toRepository: true}
)

// ToClient reports whether the encoding is for a remote peer
func (c EncodeControl) ToClient() bool {
	return !c.toRepository
}

// ToRepository reports whether the encoding is for durable storage
func (c EncodeControl) ToRepository() bool {
	return c.toRepository
}

// Strict reports whether object keys are emitted as quoted strings
func (c EncodeControl) Strict() bool {
	return !c.lenient
}

func (c EncodeControl) String() string {
	dest := "client"
	if c.toRepository {
		dest = "repository"
	}
	if c.lenient {
		return dest + "/lenient"
	}
	return dest + "/strict"
}

// Encoder binds the key quoting policy once, at process start
type Encoder struct {
	Strict bool
}

var (
	// StrictEncoder quotes object keys
	StrictEncoder = Encoder{Strict: true}
	// LenientEncoder writes object keys as bare symbols where possible
	LenientEncoder = Encoder{Strict: false}
)

// ForClient returns the control for messages to remote peers
func (e Encoder) ForClient() EncodeControl {
	return EncodeControl{lenient: !e.Strict}
}

// ForRepository returns the control for persisted descriptors
func (e Encoder) ForRepository() EncodeControl {
	return EncodeControl{toRepository: true, lenient: !e.Strict}
}

// Encode encodes any value for the client profile
func (e Encoder) Encode(v interface{}) string {
	return EncodeValue(e.ForClient(), v)
}

// Encodable is implemented by application types that know how to write themselves.
// Returning nil means the value is omitted for this destination.
type Encodable interface {
	Encode(ctl EncodeControl) *Literal
}

// Referenceable is implemented by objects addressable by a reference string
type Referenceable interface {
	Ref() string
}
