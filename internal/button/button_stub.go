//go:build !linux

package button

import "fmt"

type Buttons struct{}

func Open(Config, Controller) (*Buttons, error) {
	return nil, fmt.Errorf("button: gpio buttons are only available on linux")
}

func (b *Buttons) Close() error { return nil }
