package export

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/apilog-generator/internal/dataset"
)

type fakePublisher struct {
	msgs       []*nats.Msg
	publishErr error
	flushErr   error
	flushed    bool
	closed     bool
}

func (p *fakePublisher) PublishMsg(m *nats.Msg) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.msgs = append(p.msgs, m)
	return nil
}

func (p *fakePublisher) FlushWithContext(context.Context) error {
	p.flushed = true
	return p.flushErr
}

func (p *fakePublisher) Close() { p.closed = true }

func TestNATSSink_Export(t *testing.T) {
	pub := &fakePublisher{}
	sink := &NATSSink{conn: pub, subjectPrefix: "apigen.responses"}

	ds := testDataset()
	require.NoError(t, sink.Export(context.Background(), ds))

	require.Len(t, pub.msgs, 3)
	assert.True(t, pub.flushed)
	assert.Equal(t, "apigen.responses.claims", pub.msgs[0].Subject)
	assert.Equal(t, "apigen.responses.payments", pub.msgs[1].Subject)
	assert.Equal(t, "apigen.responses.eligibility", pub.msgs[2].Subject)
	assert.Equal(t, ds.RunID, pub.msgs[0].Header.Get(RunIDHeader))

	var got dataset.Record
	require.NoError(t, json.Unmarshal(pub.msgs[1].Data, &got))
	assert.Equal(t, ds.Records[1], got)

	require.NoError(t, sink.Close())
	assert.True(t, pub.closed)
}

func TestNATSSink_Subject(t *testing.T) {
	sink := &NATSSink{subjectPrefix: "p"}
	assert.Equal(t, "p.prior_auth", sink.Subject(" Prior Auth "))
}

func TestNATSSink_PublishError(t *testing.T) {
	pub := &fakePublisher{publishErr: nats.ErrConnectionClosed}
	sink := &NATSSink{conn: pub, subjectPrefix: "p"}

	err := sink.Export(context.Background(), testDataset())
	assert.ErrorIs(t, err, nats.ErrConnectionClosed)
	assert.False(t, pub.flushed)
}

func TestNATSSink_FlushError(t *testing.T) {
	flushErr := errors.New("flush timeout")
	sink := &NATSSink{conn: &fakePublisher{flushErr: flushErr}, subjectPrefix: "p"}

	err := sink.Export(context.Background(), testDataset())
	assert.ErrorIs(t, err, flushErr)
}
