package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/atinyakov/IdentityGrid/internal/models"
)

// Codec encodes the account collection for a KeyValue backend.
type Codec interface {
	Name() string
	Marshal(accounts []models.Account) ([]byte, error)
	Unmarshal(data []byte) ([]models.Account, error)
}

// JSONCodec stores accounts as a JSON array.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(accounts []models.Account) ([]byte, error) {
	if accounts == nil {
		accounts = []models.Account{}
	}
	return json.Marshal(accounts)
}

func (JSONCodec) Unmarshal(data []byte) ([]models.Account, error) {
	var accounts []models.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// MsgpackCodec stores accounts as a msgpack array.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Marshal(accounts []models.Account) ([]byte, error) {
	if accounts == nil {
		accounts = []models.Account{}
	}
	return msgpack.Marshal(accounts)
}

func (MsgpackCodec) Unmarshal(data []byte) ([]models.Account, error) {
	var accounts []models.Account
	if err := msgpack.Unmarshal(data, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// CodecByName returns the codec registered under name. An empty name
// selects JSON.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
