package cmd

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/peachcloud/peach-config/internal/domain/peach"
)

// rtcValue parses the --rtc flag into an optional clock model.
type rtcValue struct {
	model *peach.RtcModel
}

var _ pflag.Value = (*rtcValue)(nil)

func (v *rtcValue) String() string {
	if v.model == nil {
		return ""
	}

	return v.model.String()
}

func (v *rtcValue) Set(s string) error {
	model, err := peach.ParseRtcModel(strings.TrimSpace(s))
	if err != nil {
		return err
	}

	v.model = &model

	return nil
}

func (v *rtcValue) Type() string {
	return "model"
}
