package msg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentFrame(t *testing.T) {
	frame, err := Marshal(AssignmentMsg, &Assignment{StartRow: 300, Rows: 100})
	require.NoError(t, err)

	f, err := Open(frame)
	require.NoError(t, err)
	assert.Equal(t, AssignmentMsg, f.Type)

	var a Assignment
	require.NoError(t, f.Decode(&a))
	assert.Equal(t, Assignment{StartRow: 300, Rows: 100}, a)
}

func TestTerminateFrame(t *testing.T) {
	frame, err := Marshal(TerminateMsg, &Terminate{})
	require.NoError(t, err)

	f, err := Open(frame)
	require.NoError(t, err)
	assert.Equal(t, TerminateMsg, f.Type)
	assert.NoError(t, f.Decode(&Terminate{}))
}

func TestChunkResultFrame(t *testing.T) {
	values := []float32{0, 1.0 / 512, 0.5, 511.0 / 512}
	frame, err := Marshal(ChunkResultMsg, &ChunkResult{StartRow: 7, Values: values})
	require.NoError(t, err)

	f, err := Open(frame)
	require.NoError(t, err)
	require.Equal(t, ChunkResultMsg, f.Type)

	buf := make([]float32, 0, 16)
	res := ChunkResult{Values: buf}
	require.NoError(t, f.Decode(&res))
	assert.Equal(t, 7, res.StartRow)
	assert.Equal(t, values, res.Values)
	assert.Equal(t, 16, cap(res.Values), "decoding reuses the capacity of Values")
}

func TestRegisterWorkerResultFrame(t *testing.T) {
	want := RegisterWorkerResult{
		Rank:   2,
		Size:   4,
		Height: 480,
		Width:  640,
		Plane:  Plane{MinX: -2.1, MaxX: 0.7, MinY: -1.25, MaxY: 1.25},
	}
	frame, err := Marshal(RegisterWorkerResultMsg, &want)
	require.NoError(t, err)

	f, err := Open(frame)
	require.NoError(t, err)
	assert.Equal(t, RegisterWorkerResultMsg, f.Type)

	var got RegisterWorkerResult
	require.NoError(t, f.Decode(&got))
	assert.Equal(t, want, got)
}

func TestRegisterWorkerResultError(t *testing.T) {
	frame, err := Marshal(RegisterWorkerResultMsg, &RegisterWorkerResult{Error: "process group is full"})
	require.NoError(t, err)

	f, err := Open(frame)
	require.NoError(t, err)
	var got RegisterWorkerResult
	require.NoError(t, f.Decode(&got))
	assert.Equal(t, "process group is full", got.Error)
	assert.Zero(t, got.Rank)
}

func TestOpenEmptyFrame(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)
}

func TestDecodeWrongBody(t *testing.T) {
	frame, err := Marshal(AssignmentMsg, &Assignment{StartRow: 0, Rows: 3})
	require.NoError(t, err)

	f, err := Open(frame)
	require.NoError(t, err)
	var res ChunkResult
	err = f.Decode(&res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode Assignment")
}

func TestMessageTypeString(t *testing.T) {
	assert.Equal(t, "Assignment", AssignmentMsg.String())
	assert.Equal(t, "Terminate", TerminateMsg.String())
	assert.Equal(t, "ChunkResult", ChunkResultMsg.String())
	assert.Equal(t, "RegisterWorkerResult", RegisterWorkerResultMsg.String())
	assert.Equal(t, "Undefined", MessageType(42).String())
}
