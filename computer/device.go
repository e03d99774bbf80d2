package computer

import (
	"fmt"
	"image"
	"sync"
)

// device owns the backend handle. Input calls are serialized one primitive
// at a time; screen calls run unlocked.
type device struct {
	mu      sync.Mutex
	input   Input
	screens Screens
}

// do runs one input primitive under the device lock
func (d *device) do(op string, fn func(in Input) error) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer recoverBackend(op, &err)
	return fn(d.input)
}

func (d *device) listScreens() (screens []Screen, err error) {
	defer recoverBackend("list screens", &err)
	return d.screens.ListScreens()
}

func (d *device) capture(s Screen) (img image.Image, err error) {
	defer recoverBackend("capture", &err)
	return d.screens.Capture(s)
}

func recoverBackend(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: backend panic: %v", op, r)
	}
}
