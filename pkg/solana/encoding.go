package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/fuego-wallet/fuego-server/pkg/solana/shortvec"
)

// versionMarkerBase is added to the message version in the first byte of a
// versioned message. Legacy messages never have the high bit set because the
// first byte is the number of required signatures.
const versionMarkerBase = 127

func (t Transaction) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	// Signatures
	_, _ = shortvec.EncodeLen(b, len(t.Signatures))
	for _, s := range t.Signatures {
		_, _ = b.Write(s[:])
	}

	// Message
	_, _ = b.Write(t.Message.Marshal())

	return b.Bytes()
}

// Unmarshal decodes a legacy wire format transaction. Versioned payloads are
// rejected rather than misread.
func (t *Transaction) Unmarshal(b []byte) error {
	messageBytes, err := t.unmarshalSignatures(b)
	if err != nil {
		return err
	}

	return (&t.Message).unmarshalLegacy(messageBytes)
}

// UnmarshalVersioned decodes a versioned (v0) wire format transaction. Legacy
// payloads are rejected rather than misread.
func (t *Transaction) UnmarshalVersioned(b []byte) error {
	messageBytes, err := t.unmarshalSignatures(b)
	if err != nil {
		return err
	}

	return (&t.Message).unmarshalV0(messageBytes)
}

func (t *Transaction) unmarshalSignatures(b []byte) ([]byte, error) {
	buf := bytes.NewBuffer(b)

	sigLen, err := shortvec.DecodeLen(buf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read signature length")
	}

	t.Signatures = make([]Signature, sigLen)
	for i := 0; i < sigLen; i++ {
		if _, err = io.ReadFull(buf, t.Signatures[i][:]); err != nil {
			return nil, errors.Wrapf(err, "failed to read signature at %d", i)
		}
	}

	return buf.Bytes(), nil
}

func (m Message) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	if m.version != MessageVersionLegacy {
		_ = b.WriteByte(byte(m.version) + versionMarkerBase)
	}

	// Header
	_ = b.WriteByte(m.Header.NumSignatures)
	_ = b.WriteByte(m.Header.NumReadonlySigned)
	_ = b.WriteByte(m.Header.NumReadOnly)

	// Accounts
	_, _ = shortvec.EncodeLen(b, len(m.Accounts))
	for _, a := range m.Accounts {
		_, _ = b.Write(a)
	}

	// Recent Blockhash
	_, _ = b.Write(m.RecentBlockhash[:])

	// Instructions
	_, _ = shortvec.EncodeLen(b, len(m.Instructions))
	for _, i := range m.Instructions {
		_ = b.WriteByte(i.ProgramIndex)

		_, _ = shortvec.EncodeLen(b, len(i.Accounts))
		_, _ = b.Write(i.Accounts)

		_, _ = shortvec.EncodeLen(b, len(i.Data))
		_, _ = b.Write(i.Data)
	}

	if m.version != MessageVersionLegacy {
		_, _ = shortvec.EncodeLen(b, len(m.AddressTableLookups))
		for _, lookup := range m.AddressTableLookups {
			_, _ = b.Write(lookup.PublicKey)

			_, _ = shortvec.EncodeLen(b, len(lookup.WritableIndexes))
			_, _ = b.Write(lookup.WritableIndexes)

			_, _ = shortvec.EncodeLen(b, len(lookup.ReadonlyIndexes))
			_, _ = b.Write(lookup.ReadonlyIndexes)
		}
	}

	return b.Bytes()
}

func (m *Message) unmarshalLegacy(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0] > versionMarkerBase {
		return errors.New("unexpected versioned message")
	}

	m.version = MessageVersionLegacy
	return m.unmarshalBody(bytes.NewBuffer(b))
}

func (m *Message) unmarshalV0(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0] <= versionMarkerBase {
		return errors.New("unexpected legacy message")
	}
	if b[0] != byte(MessageVersion0)+versionMarkerBase {
		return errors.Errorf("unsupported message version: %d", b[0]&0x7f)
	}

	m.version = MessageVersion0

	buf := bytes.NewBuffer(b[1:])
	if err := m.unmarshalBody(buf); err != nil {
		return err
	}

	lookupLen, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read address table lookup len")
	}
	m.AddressTableLookups = make([]MessageAddressTableLookup, lookupLen)
	for i := 0; i < lookupLen; i++ {
		lookup := MessageAddressTableLookup{
			PublicKey: make([]byte, ed25519.PublicKeySize),
		}
		if _, err = io.ReadFull(buf, lookup.PublicKey); err != nil {
			return errors.Wrapf(err, "failed to read lookup table key at %d", i)
		}

		writableLen, err := shortvec.DecodeLen(buf)
		if err != nil {
			return errors.Wrapf(err, "failed to read writable index len at %d", i)
		}
		lookup.WritableIndexes = make([]byte, writableLen)
		if _, err = io.ReadFull(buf, lookup.WritableIndexes); err != nil {
			return errors.Wrapf(err, "failed to read writable indexes at %d", i)
		}

		readonlyLen, err := shortvec.DecodeLen(buf)
		if err != nil {
			return errors.Wrapf(err, "failed to read readonly index len at %d", i)
		}
		lookup.ReadonlyIndexes = make([]byte, readonlyLen)
		if _, err = io.ReadFull(buf, lookup.ReadonlyIndexes); err != nil {
			return errors.Wrapf(err, "failed to read readonly indexes at %d", i)
		}

		m.AddressTableLookups[i] = lookup
	}

	return nil
}

func (m *Message) unmarshalBody(buf *bytes.Buffer) (err error) {
	// Header
	if m.Header.NumSignatures, err = buf.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num signatures")
	}
	if m.Header.NumReadonlySigned, err = buf.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num readonly signatures")
	}
	if m.Header.NumReadOnly, err = buf.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num readonly")
	}

	// Accounts
	accountLen, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read account len")
	}
	m.Accounts = make([]ed25519.PublicKey, accountLen)
	for i := 0; i < accountLen; i++ {
		m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		if _, err = io.ReadFull(buf, m.Accounts[i]); err != nil {
			return errors.Wrapf(err, "failed to read account at index %d", i)
		}
	}

	// Recent block hash
	if _, err = io.ReadFull(buf, m.RecentBlockhash[:]); err != nil {
		return errors.Wrap(err, "failed to read recent block hash")
	}

	// Instructions
	instructionLen, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read instruction len")
	}
	m.Instructions = make([]CompiledInstruction, instructionLen)
	for i := 0; i < instructionLen; i++ {
		var c CompiledInstruction

		if c.ProgramIndex, err = buf.ReadByte(); err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] program index", i)
		}
		if m.version == MessageVersionLegacy && int(c.ProgramIndex) >= len(m.Accounts) {
			return errors.Errorf("program index out of range: %d:%d", i, c.ProgramIndex)
		}

		accountLen, err = shortvec.DecodeLen(buf)
		if err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] account len", i)
		}
		c.Accounts = make([]byte, accountLen)
		if _, err = io.ReadFull(buf, c.Accounts); err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] accounts", i)
		}

		if m.version == MessageVersionLegacy {
			for _, index := range c.Accounts {
				if int(index) >= len(m.Accounts) {
					return errors.Errorf("account index out of range: %d:%d", i, index)
				}
			}
		}

		dataLen, err := shortvec.DecodeLen(buf)
		if err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] data len", i)
		}
		c.Data = make([]byte, dataLen)
		if _, err = io.ReadFull(buf, c.Data); err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] data", i)
		}

		m.Instructions[i] = c
	}

	return nil
}
