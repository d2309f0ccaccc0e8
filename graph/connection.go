package graph

// ConversionPolicy names how a Connection's source buffer is turned
// into its destination's shape.
type ConversionPolicy int

const (
	ConvCopy ConversionPolicy = iota
	ConvBroadcast
	ConvMerge
	ConvLift
)

func (c ConversionPolicy) String() string {
	switch c {
	case ConvCopy:
		return "copy"
	case ConvBroadcast:
		return "bcast"
	case ConvMerge:
		return "merge"
	case ConvLift:
		return "lift"
	default:
		return "invalid"
	}
}

// conversionTable is the permitted (source -> dest) matrix.
// Entries absent from the map are TYPE_MISMATCH.
var conversionTable = map[[2]PortType]ConversionPolicy{
	{TypeAudio, TypeAudio}:     ConvCopy,
	{TypeAudio, TypeCV}:        ConvCopy,
	{TypeControl, TypeControl}: ConvCopy,
	{TypeControl, TypeAudio}:   ConvBroadcast,
	{TypeControl, TypeCV}:      ConvBroadcast,
	{TypeCV, TypeAudio}:        ConvCopy,
	{TypeCV, TypeCV}:           ConvCopy,
	{TypeEvent, TypeEvent}:     ConvMerge,
	{TypeEvent, TypeAtom}:      ConvLift,
	{TypeAtom, TypeAtom}:       ConvCopy,
}

// Convertible reports whether a connection from src to dst is legal
// and, if so, which conversion policy it uses.
func Convertible(src, dst PortType) (ConversionPolicy, bool) {
	p, ok := conversionTable[[2]PortType{src, dst}]
	return p, ok
}

// Connection is a directed, typed edge from an Output port to an Input
// port. It owns no buffers; buffers belong to ports.
type Connection struct {
	Src  *Port
	Dst  *Port
	Conv ConversionPolicy

	// pendingDisconnection marks a connection being torn down so that
	// concurrent DisconnectAll events in the same pre_process wave
	// don't enqueue duplicate removals.
	pendingDisconnection bool
}

func (c *Connection) PendingDisconnection() bool { return c.pendingDisconnection }
func (c *Connection) MarkPendingDisconnection()   { c.pendingDisconnection = true }

// SamePair reports whether c connects exactly src->dst.
func (c *Connection) SamePair(src, dst *Port) bool {
	return c.Src == src && c.Dst == dst
}
