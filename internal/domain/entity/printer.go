package entity

// PrinterStorageKey local storage slot holding the selected printer uid
const PrinterStorageKey = "label_printer"

// DeviceKind kind of device requested from a driver
type DeviceKind string

const DeviceKindPrinter DeviceKind = "printer"

// Device a discovered output device
type Device struct {
	UID        string
	Name       string
	Kind       DeviceKind
	Connection string
	Address    string
}

// ReadResult data read back from a device
type ReadResult struct {
	Data []byte
	Err  error
}
