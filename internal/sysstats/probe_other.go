//go:build !linux

package sysstats

import (
	"context"
	"errors"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
)

var errUnsupported = errors.New("system stats are only sampled on linux")

type hostProbe struct{}

func newHostProbe(string) Probe { return hostProbe{} }

func (hostProbe) Sample(context.Context) (model.SystemSnapshot, error) {
	return model.SystemSnapshot{}, errUnsupported
}
