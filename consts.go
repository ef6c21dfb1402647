package calltrace

const (
	emptyString = ""

	// Message templates handed to the Sink. Values are substituted by the sink.
	msgClassMethod   = "Class: %s, method: %s"
	msgArgument      = "arg: %v"
	msgReturnedValue = "returned value: %v"
)

const (
	errMsgNilObject          = "Object is nil."
	errMsgEmptyKey           = "Object key is empty."
	errMsgDuplicateClass     = "Type carries more than one class marker."
	errMsgDuplicateMethod    = "Method carries more than one method marker."
	errMsgUnknownMethod      = "Marked method is not an exported method of the type."
	errMsgNilSink            = "Sink is nil."
	errMsgConfigInvalid      = "Tracing configuration is invalid."
	errMsgConfigLoad         = "Tracing configuration could not be loaded."
	errMsgCapabilityNotIface = "Capability type is not an interface."
)
