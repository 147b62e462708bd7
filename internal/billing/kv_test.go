package billing

import "errors"

var errBroken = errors.New("disk on fire")

// memKV is an in-memory KV. Setting failSet or failGet makes the matching
// calls return errBroken.
type memKV struct {
	data    map[string]string
	failGet bool
	failSet bool
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
}

func (m *memKV) Get(key string) (string, bool, error) {
	if m.failGet {
		return "", false, errBroken
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	if m.failSet {
		return errBroken
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Remove(key string) error {
	if m.failSet {
		return errBroken
	}
	delete(m.data, key)
	return nil
}
