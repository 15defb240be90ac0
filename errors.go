package temptable

import "errors"

// ErrorRecordFileFull returned by Allocator.Alloc when neither RAM
// nor MMAP has headroom under the configured thresholds. Monitor
// state is left untouched by a failed allocation. Any other error
// coming out of Alloc is a fatal OS level allocation failure.
var ErrorRecordFileFull = errors.New("temptable.recordfilefull")
