package emit

// NullEmitter discards all events. Runs without a configured emitter
// use it so the engine never needs a nil check.
type NullEmitter struct{}

// NewNullEmitter returns an emitter that drops every event.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

func (*NullEmitter) Emit(Event) {}
