package wire

// QType is a DNS query/record type.
type QType uint16

const (
	QTypeA     QType = 1
	QTypeNS    QType = 2
	QTypeCNAME QType = 5
	QTypeMX    QType = 15
	QTypeAAAA  QType = 28
)

// QClass is a DNS query/record class.
type QClass uint16

const (
	ClassInternet QClass = 1
	ClassCSNET    QClass = 2
	ClassChaos    QClass = 3
	ClassHesiod   QClass = 4
)

func decodeClass(raw uint16) (QClass, error) {
	switch QClass(raw) {
	case ClassInternet, ClassCSNET, ClassChaos, ClassHesiod:
		return QClass(raw), nil
	default:
		return 0, ErrInvalidClass
	}
}

// Question is a single entry in a packet's question section.
type Question struct {
	Name  string
	Type  QType
	Class QClass
}

func decodeQuestion(b *Buffer) (Question, error) {
	name, err := decodeName(b)
	if err != nil {
		return Question{}, err
	}
	rawType, err := b.readU16()
	if err != nil {
		return Question{}, err
	}
	rawClass, err := b.readU16()
	if err != nil {
		return Question{}, err
	}
	class, err := decodeClass(rawClass)
	if err != nil {
		return Question{}, err
	}
	return Question{Name: name, Type: QType(rawType), Class: class}, nil
}

func (q Question) encode(b *Buffer) error {
	if err := encodeName(b, q.Name); err != nil {
		return err
	}
	if err := b.writeU16(uint16(q.Type)); err != nil {
		return err
	}
	return b.writeU16(uint16(q.Class))
}
