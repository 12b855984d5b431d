package rockridge

import (
	"fmt"
	"sync"
	"time"

	"github.com/rstms/iso9660rr/pkg/encoding"
	"github.com/rstms/iso9660rr/pkg/source"
	"github.com/rstms/iso9660rr/pkg/susp"
)

// TF bitmask fields.
const (
	TFCreation   uint8 = 1
	TFModify     uint8 = 2
	TFAccess     uint8 = 4
	TFAttributes uint8 = 8
	TFBackup     uint8 = 16
	TFExpiration uint8 = 32
	TFEffective  uint8 = 64
	TFLongForm   uint8 = 128
)

// LazyTime defers decoding a timestamp until first accessed via Get, then
// memoizes the result. TF entries use this for every timestamp they carry,
// short or long form, so a caller that only wants names never pays the
// datetime decode and timezone-arithmetic cost.
type LazyTime struct {
	mu       sync.Mutex
	resolved bool
	value    time.Time
	err      error
	fn       func() (time.Time, error)
}

func newLazyTime(fn func() (time.Time, error)) *LazyTime {
	return &LazyTime{fn: fn}
}

func newEagerTime(t time.Time) *LazyTime {
	return &LazyTime{resolved: true, value: t}
}

// Get resolves the timestamp, decoding it on first call and returning the
// cached result thereafter.
func (l *LazyTime) Get() (time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.resolved {
		l.value, l.err = l.fn()
		l.resolved = true
	}
	return l.value, l.err
}

// TF carries the subset of {creation, modify, access, attributes, backup,
// expiration, effective} timestamps its Flags bitmask selects, in either
// short (directory-record) or long (volume-descriptor) form.
type TF struct {
	Header     susp.Header
	Flags      uint8
	Creation   *LazyTime
	Modify     *LazyTime
	Access     *LazyTime
	Attributes *LazyTime
	Backup     *LazyTime
	Expiration *LazyTime
	Effective  *LazyTime
}

func (e *TF) SUSPHeader() susp.Header { return e.Header }

func init() {
	for _, ext := range Versions {
		susp.Register("TF", 1, ext, decodeTF)
	}
}

func decodeTF(h susp.Header, payloadLen int, src *source.Source) (susp.Entry, error) {
	if payloadLen < 1 {
		return nil, fmt.Errorf("TF: payload too short: %d", payloadLen)
	}
	flags, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}
	longForm := flags&TFLongForm != 0

	readField := func() (*LazyTime, error) {
		if longForm {
			raw, err := src.UnpackRaw(17)
			if err != nil {
				return nil, err
			}
			var b [17]byte
			copy(b[:], raw)
			return newLazyTime(func() (time.Time, error) {
				return encoding.UnmarshalDateTime(b)
			}), nil
		}
		fn, err := src.UnpackLazyRecordingDateTime()
		if err != nil {
			return nil, err
		}
		return newLazyTime(fn), nil
	}

	tf := &TF{Header: h, Flags: flags}
	for _, field := range []struct {
		bit  uint8
		dest **LazyTime
	}{
		{TFCreation, &tf.Creation},
		{TFModify, &tf.Modify},
		{TFAccess, &tf.Access},
		{TFAttributes, &tf.Attributes},
		{TFBackup, &tf.Backup},
		{TFExpiration, &tf.Expiration},
		{TFEffective, &tf.Effective},
	} {
		if flags&field.bit == 0 {
			continue
		}
		lt, err := readField()
		if err != nil {
			return nil, err
		}
		*field.dest = lt
	}
	return tf, nil
}
