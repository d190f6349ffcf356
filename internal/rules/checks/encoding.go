package checks

import (
	"errors"

	"github.com/prettymuchbryce/fmtcheck/internal/report"
	"github.com/prettymuchbryce/fmtcheck/internal/rules"
	"github.com/prettymuchbryce/fmtcheck/internal/source"
	"github.com/prettymuchbryce/fmtcheck/internal/textenc"
)

func init() {
	rules.RegisterCheck(&rules.CheckRule{
		Name: "encoding",
		Label: func(opts *rules.Options) string {
			return "not " + opts.EncodingName()
		},
		Check: checkEncoding,
	})
}

func checkEncoding(f *source.File, opts *rules.Options) (rules.Result, error) {
	if f.Decoded() {
		return rules.Pass(), nil
	}
	var decodeErr *textenc.DecodeError
	if errors.As(f.DecodeErr, &decodeErr) {
		return rules.Fail(report.Finding{Line: decodeErr.Line, Message: decodeErr.Error()}), nil
	}
	return rules.Fail(report.Finding{Message: f.DecodeErr.Error()}), nil
}
