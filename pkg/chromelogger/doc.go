// Package chromelogger implements the server side of the Chrome Logger protocol.
//
// # Overview
//
// A Console collects log rows while a request is being served and encodes them
// into the X-ChromeLogger-Data response header, which the Chrome Logger browser
// extension decodes and replays in the developer console.
//
//	console := chromelogger.New(chromelogger.Config{})
//	console.Log("user loaded", user)
//	console.Warn("cache miss")
//	console.SendLogHeader(w)
//
// # Wire Format
//
// The header value is base64(JSON) of:
//
//	{
//	  "version": "1.0.0",
//	  "columns": ["log", "backtrace", "type"],
//	  "rows": [[[<values...>], "<file> : <line>" | null, "<kind>"], ...],
//	  "request_uri": "<uri>" | null
//	}
//
// # Object Flattening
//
// Non-primitive arguments are converted into ordered objects keyed by field name.
// The first key is always "___class_name". Unexported fields are included under
// "private <name>". Use Secret, the
// `chromelogger:"redact"` tag or the `chromelogger:"-"` tag to keep credentials
// out of the header. Reference cycles are replaced by
// "recursion - parent object [<type>]".
//
// # Lifecycle
//
// A Console moves from StateAccumulating to StateSent when the header is set and
// to StateSealed once the response is committed. Rows emitted after sealing can
// no longer be delivered and are dropped; Stats reports how many.
//
// All methods are safe on a nil *Console and never panic or return errors.
package chromelogger
