package logging

import "time"

const (
	emptyString    = ""
	defaultLogName = "calltrace"

	defaultShutdownTimeout = 500 * time.Millisecond
)

const (
	errMsgNilConfig        = "Logging config is nil."
	errMsgNilService       = "Logger service is nil."
	errMsgAppCfgNotSet     = "Application config is not set."
	errMsgConfigInvalid    = "Logging configuration is invalid."
	errMsgInvalidLevel     = "Logging level is invalid."
	errMsgWorkingDirNotSet = "Working directory is not set."
	errMsgLogDir           = "Failed to create logs directory."
	errMsgCloseFile        = "Failed to close log file."
)
