package frame

const (
	// Slots reported by the ALC 1800 PC per line.
	SlotCount = 4
	// Fields per slot, in fixed position order.
	FieldsPerSlot = 11
	// Raw tokens per valid line, including the trailing terminator artifact.
	FrameFieldCount = SlotCount*FieldsPerSlot + 1

	Delimiter = ";"
)

// Field positions inside a slot window.
const (
	PosSlot = iota
	PosProgram
	PosStatus
	PosVoltage
	PosCurrent
	PosReserved1
	PosReserved2
	PosChargedCapacity
	PosDischargedCapacity
	PosEnergy
	PosRuntime
)

// FieldDef describes one position of a slot window.
type FieldDef struct {
	Key     string // time series / database key
	Label   string // console header
	Unit    string
	Numeric bool
}

// SlotFields is the fixed slot layout. Labels match the vendor tool's header.
var SlotFields = [FieldsPerSlot]FieldDef{
	{Key: "slot", Label: "Slot"},
	{Key: "program", Label: "Program"},
	{Key: "status", Label: "Status"},
	{Key: "voltage", Label: "Voltage", Unit: "(mV)", Numeric: true},
	{Key: "current", Label: "Current", Unit: "(mA)", Numeric: true},
	{Key: "reserved_1", Label: "ukn", Numeric: true},
	{Key: "reserved_2", Label: "ukn", Numeric: true},
	{Key: "charged_capacity", Label: "Charged-Capacity", Unit: "(mAh)", Numeric: true},
	{Key: "discharged_capacity", Label: "Discharged-Capacity", Unit: "(mAh)", Numeric: true},
	{Key: "energy", Label: "Energy", Unit: "(mW)", Numeric: true},
	{Key: "runtime", Label: "unk"},
}

type Status string

// Known stati. Anything else is passed through as reported.
const (
	StatusCharging Status = "C"
	StatusPause    Status = "P"
	StatusTopOff   Status = "T"
)

func (s Status) Description() string {
	switch s {
	case StatusCharging:
		return "Charging"
	case StatusPause:
		return "Pause"
	case StatusTopOff:
		return "Top-Off"
	default:
		return "Unknown"
	}
}

// Value is a raw field with its integer form when it parsed as one.
type Value struct {
	Raw     string
	Int     int64
	Numeric bool
}

// Interface returns the int64 for numeric values and the raw string otherwise.
func (v Value) Interface() any {
	if v.Numeric {
		return v.Int
	}
	return v.Raw
}

func (v Value) String() string { return v.Raw }

// SlotRecord is one charging bay as reported in a single line.
type SlotRecord struct {
	Raw    [FieldsPerSlot]string
	Values [FieldsPerSlot]Value
}

func (s SlotRecord) ID() string { return s.Raw[PosSlot] }
func (s SlotRecord) Program() string { return s.Raw[PosProgram] }
func (s SlotRecord) Status() Status { return Status(s.Raw[PosStatus]) }
func (s SlotRecord) Voltage() Value { return s.Values[PosVoltage] }
func (s SlotRecord) Current() Value { return s.Values[PosCurrent] }
func (s SlotRecord) ChargedCapacity() Value { return s.Values[PosChargedCapacity] }
func (s SlotRecord) DischargedCapacity() Value { return s.Values[PosDischargedCapacity] }
func (s SlotRecord) Energy() Value { return s.Values[PosEnergy] }
func (s SlotRecord) Runtime() string { return s.Raw[PosRuntime] }
func (s SlotRecord) Reserved() (Value, Value) { return s.Values[PosReserved1], s.Values[PosReserved2] }

// Batch is one decoded line. Raw keeps the 44 tokens as received.
type Batch struct {
	Raw   []string
	Slots [SlotCount]SlotRecord
}
