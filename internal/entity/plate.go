package domain

// Plate is a priced menu plate as resolved from an RFID scan.
// Price is in the smallest currency unit (rupiah).
type Plate struct {
	ID      int64
	RFIDUID string
	Name    string
	Price   int64
	Active  bool
}
