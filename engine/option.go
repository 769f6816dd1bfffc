package engine

import "strconv"

// Option is a transfer option identifier (CURLoption).
type Option int

const (
	optLong     Option = 0
	optPointer  Option = 10000
	optFunction Option = 20000
)

const (
	OptTimeout          Option = optLong + 13
	OptInFileSize       Option = optLong + 14
	OptVerbose          Option = optLong + 41
	OptUpload           Option = optLong + 46
	OptPost             Option = optLong + 47
	OptFollowLocation   Option = optLong + 52
	OptProxyPort        Option = optLong + 59
	OptPostFieldSize    Option = optLong + 60
	OptSSLVerifyPeer    Option = optLong + 64
	OptMaxRedirs        Option = optLong + 68
	OptConnectTimeout   Option = optLong + 78
	OptHTTPGet          Option = optLong + 80
	OptNoSignal         Option = optLong + 99
	OptIPResolve        Option = optLong + 113
	OptTimeoutMS        Option = optLong + 155
	OptConnectTimeoutMS Option = optLong + 156

	OptWriteData      Option = optPointer + 1
	OptURL            Option = optPointer + 2
	OptProxy          Option = optPointer + 4
	OptReadData       Option = optPointer + 9
	OptPostFields     Option = optPointer + 15
	OptUserAgent      Option = optPointer + 18
	OptHTTPHeader     Option = optPointer + 23
	OptHTTPPost       Option = optPointer + 24
	OptHeaderData     Option = optPointer + 29
	OptCustomRequest  Option = optPointer + 36
	OptCAInfo         Option = optPointer + 65
	OptAcceptEncoding Option = optPointer + 102

	OptWriteFunction  Option = optFunction + 11
	OptReadFunction   Option = optFunction + 12
	OptHeaderFunction Option = optFunction + 79
)

// IP resolve modes for OptIPResolve.
const (
	IPResolveWhatever = 0
	IPResolveV4       = 1
	IPResolveV6       = 2
)

var optionNames = map[Option]string{
	OptTimeout:          "CURLOPT_TIMEOUT",
	OptInFileSize:       "CURLOPT_INFILESIZE",
	OptVerbose:          "CURLOPT_VERBOSE",
	OptUpload:           "CURLOPT_UPLOAD",
	OptPost:             "CURLOPT_POST",
	OptFollowLocation:   "CURLOPT_FOLLOWLOCATION",
	OptProxyPort:        "CURLOPT_PROXYPORT",
	OptPostFieldSize:    "CURLOPT_POSTFIELDSIZE",
	OptSSLVerifyPeer:    "CURLOPT_SSL_VERIFYPEER",
	OptMaxRedirs:        "CURLOPT_MAXREDIRS",
	OptConnectTimeout:   "CURLOPT_CONNECTTIMEOUT",
	OptHTTPGet:          "CURLOPT_HTTPGET",
	OptNoSignal:         "CURLOPT_NOSIGNAL",
	OptIPResolve:        "CURLOPT_IPRESOLVE",
	OptTimeoutMS:        "CURLOPT_TIMEOUT_MS",
	OptConnectTimeoutMS: "CURLOPT_CONNECTTIMEOUT_MS",
	OptWriteData:        "CURLOPT_WRITEDATA",
	OptURL:              "CURLOPT_URL",
	OptProxy:            "CURLOPT_PROXY",
	OptReadData:         "CURLOPT_READDATA",
	OptPostFields:       "CURLOPT_POSTFIELDS",
	OptUserAgent:        "CURLOPT_USERAGENT",
	OptHTTPHeader:       "CURLOPT_HTTPHEADER",
	OptHTTPPost:         "CURLOPT_HTTPPOST",
	OptHeaderData:       "CURLOPT_HEADERDATA",
	OptCustomRequest:    "CURLOPT_CUSTOMREQUEST",
	OptCAInfo:           "CURLOPT_CAINFO",
	OptAcceptEncoding:   "CURLOPT_ACCEPT_ENCODING",
	OptWriteFunction:    "CURLOPT_WRITEFUNCTION",
	OptReadFunction:     "CURLOPT_READFUNCTION",
	OptHeaderFunction:   "CURLOPT_HEADERFUNCTION",
}

// String returns the CURLOPT_ name, or the numeric id for options this
// package has no constant for.
func (o Option) String() string {
	if s, ok := optionNames[o]; ok {
		return s
	}
	return "CURLOPT(" + strconv.Itoa(int(o)) + ")"
}

// IsLong reports whether the option takes a long argument.
func (o Option) IsLong() bool { return o < optPointer }

// IsPointer reports whether the option takes an object pointer argument.
func (o Option) IsPointer() bool { return o >= optPointer && o < optFunction }

// IsFunction reports whether the option takes a function pointer argument.
func (o Option) IsFunction() bool { return o >= optFunction && o < 30000 }

// DataOption returns the userdata option paired with a function option, and
// false for function options the bridge does not route.
func DataOption(fn Option) (Option, bool) {
	switch fn {
	case OptWriteFunction:
		return OptWriteData, true
	case OptHeaderFunction:
		return OptHeaderData, true
	case OptReadFunction:
		return OptReadData, true
	}
	return 0, false
}
