package engine

import "fmt"

// Code is a transfer engine status (CURLcode).
type Code int

const (
	OK                Code = 0
	UnsupportedProto  Code = 1
	FailedInit        Code = 2
	URLMalformat      Code = 3
	CouldntResolve    Code = 6
	CouldntConnect    Code = 7
	WriteError        Code = 23
	ReadError         Code = 26
	OutOfMemory       Code = 27
	OperationTimedOut Code = 28
	AbortedByCallback Code = 42
	BadFunctionArg    Code = 43
	UnknownOption     Code = 48
	TooManyRedirects  Code = 47
	GotNothing        Code = 52
)

var codeNames = map[Code]string{
	OK:                "No error",
	UnsupportedProto:  "Unsupported protocol",
	FailedInit:        "Failed initialization",
	URLMalformat:      "URL using bad/illegal format or missing URL",
	CouldntResolve:    "Couldn't resolve host name",
	CouldntConnect:    "Couldn't connect to server",
	WriteError:        "Failed writing received data to disk/application",
	ReadError:         "Failed to open/read local data from file/application",
	OutOfMemory:       "Out of memory",
	OperationTimedOut: "Timeout was reached",
	AbortedByCallback: "Operation was aborted by an application callback",
	BadFunctionArg:    "A libcurl function was given a bad argument",
	UnknownOption:     "An unknown option was passed in to libcurl",
	TooManyRedirects:  "Number of redirects hit maximum amount",
	GotNothing:        "Server returned nothing (no headers, no data)",
}

func (c Code) Error() string {
	if s, ok := codeNames[c]; ok {
		return fmt.Sprintf("curl code %d: %s", int(c), s)
	}
	return fmt.Sprintf("curl code %d", int(c))
}

// FormCode is a multipart builder status (CURLFORMcode).
type FormCode int

const (
	FormOK           FormCode = 0
	FormMemory       FormCode = 1
	FormOptionTwice  FormCode = 2
	FormNull         FormCode = 3
	FormUnknownOpt   FormCode = 4
	FormIncomplete   FormCode = 5
	FormIllegalArray FormCode = 6
	FormDisabled     FormCode = 7
)

func (c FormCode) Error() string {
	return fmt.Sprintf("curl form code %d", int(c))
}
