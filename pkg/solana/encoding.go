package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/tokenforge/tokenforge/pkg/solana/shortvec"
)

var (
	ErrVersionedMessage = errors.New("versioned messages are not supported")
)

// Marshal returns the wire encoding of the transaction.
func (t Transaction) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	_, _ = shortvec.EncodeLen(b, len(t.Signatures))
	for _, s := range t.Signatures {
		_, _ = b.Write(s[:])
	}

	_, _ = b.Write(t.Message.Marshal())

	return b.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	buf := bytes.NewBuffer(b)

	count, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read signature count")
	}

	t.Signatures = make([]Signature, count)
	for i := range t.Signatures {
		if _, err = io.ReadFull(buf, t.Signatures[i][:]); err != nil {
			return errors.Wrapf(err, "failed to read signature %d", i)
		}
	}

	return t.Message.Unmarshal(buf.Bytes())
}

// Marshal returns the canonical legacy message encoding. This is the payload
// every signer signs.
func (m Message) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	_ = b.WriteByte(m.Header.NumSignatures)
	_ = b.WriteByte(m.Header.NumReadonlySigned)
	_ = b.WriteByte(m.Header.NumReadOnly)

	_, _ = shortvec.EncodeLen(b, len(m.Accounts))
	for _, a := range m.Accounts {
		_, _ = b.Write(a)
	}

	_, _ = b.Write(m.RecentBlockhash[:])

	_, _ = shortvec.EncodeLen(b, len(m.Instructions))
	for _, ix := range m.Instructions {
		_ = b.WriteByte(ix.ProgramIndex)

		_, _ = shortvec.EncodeLen(b, len(ix.Accounts))
		_, _ = b.Write(ix.Accounts)

		_, _ = shortvec.EncodeLen(b, len(ix.Data))
		_, _ = b.Write(ix.Data)
	}

	return b.Bytes()
}

func (m *Message) Unmarshal(b []byte) (err error) {
	if len(b) == 0 {
		return io.ErrUnexpectedEOF
	}
	// Versioned messages set the high bit of the first byte.
	if b[0]&0x80 != 0 {
		return ErrVersionedMessage
	}

	buf := bytes.NewBuffer(b)

	if m.Header.NumSignatures, err = buf.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num signatures")
	}
	if m.Header.NumReadonlySigned, err = buf.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num readonly signatures")
	}
	if m.Header.NumReadOnly, err = buf.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num readonly")
	}

	accountCount, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read account count")
	}
	m.Accounts = make([]ed25519.PublicKey, accountCount)
	for i := range m.Accounts {
		m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		if _, err = io.ReadFull(buf, m.Accounts[i]); err != nil {
			return errors.Wrapf(err, "failed to read account %d", i)
		}
	}

	if _, err = io.ReadFull(buf, m.RecentBlockhash[:]); err != nil {
		return errors.Wrap(err, "failed to read recent blockhash")
	}

	instructionCount, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read instruction count")
	}
	m.Instructions = make([]CompiledInstruction, instructionCount)
	for i := range m.Instructions {
		if m.Instructions[i], err = readCompiledInstruction(buf, len(m.Accounts)); err != nil {
			return errors.Wrapf(err, "failed to read instruction %d", i)
		}
	}

	return nil
}

func readCompiledInstruction(buf *bytes.Buffer, accountCount int) (ix CompiledInstruction, err error) {
	if ix.ProgramIndex, err = buf.ReadByte(); err != nil {
		return ix, errors.Wrap(err, "failed to read program index")
	}
	if int(ix.ProgramIndex) >= accountCount {
		return ix, errors.Errorf("program index %d out of range", ix.ProgramIndex)
	}

	n, err := shortvec.DecodeLen(buf)
	if err != nil {
		return ix, errors.Wrap(err, "failed to read account index count")
	}
	ix.Accounts = make([]byte, n)
	if _, err = io.ReadFull(buf, ix.Accounts); err != nil {
		return ix, errors.Wrap(err, "failed to read account indexes")
	}
	for _, index := range ix.Accounts {
		if int(index) >= accountCount {
			return ix, errors.Errorf("account index %d out of range", index)
		}
	}

	n, err = shortvec.DecodeLen(buf)
	if err != nil {
		return ix, errors.Wrap(err, "failed to read data length")
	}
	ix.Data = make([]byte, n)
	if _, err = io.ReadFull(buf, ix.Data); err != nil {
		return ix, errors.Wrap(err, "failed to read data")
	}

	return ix, nil
}
