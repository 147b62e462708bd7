package billing

// KV is the persistence layer every component in this package goes
// through. Get reports a missing key with ok == false and a nil error.
// Nothing is transactional across keys.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}
