// Package restyutil dumps full request/response exchanges of a resty
// client to an output sink. meant for debugging scrape runs against a
// page whose markup drifted.
package restyutil

import (
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string)
}

// DumpExchanges writes every completed exchange of the client to the
// output, one file per request. `output` can be nil, in which case the
// function is a no-op.
func DumpExchanges(client *resty.Client, output Output) {
	if output == nil {
		return
	}

	var counter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := strconv.FormatUint(atomic.AddUint64(&counter, 1), 10)
		output.Write(id, formatHttpMessage(res))
		return nil
	})
}
