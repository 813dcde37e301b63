package ingest

import (
	"fmt"
	"io"
	"strings"
)

// WriteReport emits the upload outcome as a tab-separated byte stream: every
// candidate row's original fields plus a trailing status column, followed by a
// section listing every structural parse error verbatim. The response to an
// upload is always this report, so a caller can diagnose every row's fate
// without re-submitting.
//
// Fields are joined with plain tabs, no quoting: Raw fields came from a
// tab-split of a single line, so they can contain neither tabs nor newlines,
// and the report must reproduce them byte for byte.
func WriteReport(w io.Writer, res *Result) error {
	if _, err := fmt.Fprintf(w, "%s\tstatus\n", strings.Join(res.Header, "\t")); err != nil {
		return err
	}

	for _, o := range res.Outcomes {
		status := o.Reason
		if o.Success {
			status = StatusSuccess
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", strings.Join(o.Raw, "\t"), status); err != nil {
			return err
		}
	}

	if len(res.StructuralErrors) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		for _, se := range res.StructuralErrors {
			if _, err := fmt.Fprintf(w, "row %d: %s: %s\n", se.Row, se.Reason, se.Line); err != nil {
				return err
			}
		}
	}
	return nil
}
