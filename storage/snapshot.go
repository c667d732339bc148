package storage

import (
	"encoding/json"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/vmihailenco/msgpack/v5"
)

type Codec string

const (
	CodecJSON    Codec = "json"
	CodecMsgpack Codec = "msgpack"
)

func (c Codec) ContentType() string {
	switch c {
	case CodecMsgpack:
		return "application/x-msgpack"
	}
	return "application/json"
}

// SnapshotKey is the object key of an archived tournament.
func SnapshotKey(t *models.Tournament, c Codec) string {
	return fmt.Sprintf("archives/%s/v%d.%s", t.ID, t.Version, c)
}

func EncodeSnapshot(t *models.Tournament, c Codec) ([]byte, error) {
	switch c {
	case CodecJSON:
		return json.Marshal(t)
	case CodecMsgpack:
		return msgpack.Marshal(t)
	}
	return nil, fmt.Errorf("unknown snapshot codec %q", c)
}

func DecodeSnapshot(data []byte, c Codec) (*models.Tournament, error) {
	t := &models.Tournament{}
	var err error
	switch c {
	case CodecJSON:
		err = json.Unmarshal(data, t)
	case CodecMsgpack:
		err = msgpack.Unmarshal(data, t)
	default:
		return nil, fmt.Errorf("unknown snapshot codec %q", c)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", c, err)
	}
	return t, nil
}
