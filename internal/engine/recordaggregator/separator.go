package recordaggregator

import "runtime"

// LineSeparator terminates emitted record lines and the header, matching the
// platform convention of the host system.
var LineSeparator = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()
