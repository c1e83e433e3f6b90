//go:build linux

// Package fbdev provides access to Linux framebuffer device colour maps.
package fbdev

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linux/fb.h
const (
	_FBIOGET_VSCREENINFO = 0x4600
	_FBIOGETCMAP         = 0x4604
	_FBIOPUTCMAP         = 0x4605
)

// Bitfield describes the position of a colour component within a pixel.
type Bitfield struct {
	Offset   uint32
	Length   uint32
	MSBRight uint32
}

// VarScreenInfo is struct fb_var_screeninfo.
type VarScreenInfo struct {
	XRes, YRes               uint32
	XResVirtual, YResVirtual uint32
	XOffset, YOffset         uint32
	BitsPerPixel             uint32
	Grayscale                uint32
	Red, Green, Blue, Transp Bitfield
	Nonstd                   uint32
	Activate                 uint32
	Height, Width            uint32 // mm
	AccelFlags               uint32
	Pixclock                 uint32 // ps
	LeftMargin, RightMargin  uint32
	UpperMargin, LowerMargin uint32
	HsyncLen, VsyncLen       uint32
	Sync                     uint32
	Vmode                    uint32
	Rotate                   uint32
	Colorspace               uint32
	_                        [4]uint32
}

// CmapLen returns the number of palette entries needed to cover the widest
// colour component.
func (v VarScreenInfo) CmapLen() int {
	bits := max(v.Red.Length, v.Green.Length, v.Blue.Length)
	if bits == 0 || bits > 16 {
		return 0
	}
	return 1 << bits
}

// fbCmap is struct fb_cmap.
type fbCmap struct {
	start  uint32
	len    uint32
	red    *uint16
	green  *uint16
	blue   *uint16
	transp *uint16
}

// Device is an open framebuffer device.
type Device struct {
	fd   int
	name string
}

// Open opens a framebuffer device node (e.g., /dev/fb0). Setting the colour
// map does not require write access.
func Open(name string) (*Device, error) {
	fd, err := unix.Open(name, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return &Device{fd: fd, name: name}, nil
}

// Name returns the path the device was opened with.
func (d *Device) Name() string {
	return d.name
}

// Close closes the device.
func (d *Device) Close() error {
	if err := unix.Close(d.fd); err != nil {
		return &os.PathError{Op: "close", Path: d.name, Err: err}
	}
	return nil
}

// VarScreenInfo gets the variable screen info.
func (d *Device) VarScreenInfo() (VarScreenInfo, error) {
	var v VarScreenInfo
	if err := d.ioctl(_FBIOGET_VSCREENINFO, "FBIOGET_VSCREENINFO", unsafe.Pointer(&v)); err != nil {
		return VarScreenInfo{}, err
	}
	return v, nil
}

// GetCmap reads n palette entries starting at start.
func (d *Device) GetCmap(start, n int) (r, g, b []uint16, err error) {
	if !validRange(start, n) {
		return nil, nil, nil, fmt.Errorf("invalid colour map range %d+%d", start, n)
	}
	r, g, b = make([]uint16, n), make([]uint16, n), make([]uint16, n)
	c := fbCmap{
		start: uint32(start),
		len:   uint32(n),
		red:   unsafe.SliceData(r),
		green: unsafe.SliceData(g),
		blue:  unsafe.SliceData(b),
	}
	err = d.ioctl(_FBIOGETCMAP, "FBIOGETCMAP", unsafe.Pointer(&c))
	runtime.KeepAlive(r)
	runtime.KeepAlive(g)
	runtime.KeepAlive(b)
	if err != nil {
		return nil, nil, nil, err
	}
	return r, g, b, nil
}

// PutCmap writes palette entries starting at start. The channels must have
// the same non-zero length.
func (d *Device) PutCmap(start int, r, g, b []uint16) error {
	if !validRange(start, len(r)) || len(r) != len(g) || len(r) != len(b) {
		return fmt.Errorf("invalid colour map (start=%d r=%d g=%d b=%d)", start, len(r), len(g), len(b))
	}
	c := fbCmap{
		start: uint32(start),
		len:   uint32(len(r)),
		red:   unsafe.SliceData(r),
		green: unsafe.SliceData(g),
		blue:  unsafe.SliceData(b),
	}
	err := d.ioctl(_FBIOPUTCMAP, "FBIOPUTCMAP", unsafe.Pointer(&c))
	runtime.KeepAlive(r)
	runtime.KeepAlive(g)
	runtime.KeepAlive(b)
	return err
}

// validRange reports whether start and n fit in a struct fb_cmap.
func validRange(start, n int) bool {
	return start >= 0 && n > 0 && uint64(start)+uint64(n) <= math.MaxUint32
}

func (d *Device) ioctl(req uintptr, name string, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, uintptr(arg)); errno != 0 {
		return fmt.Errorf("%s: ioctl %s: %w", d.name, name, errno)
	}
	return nil
}
