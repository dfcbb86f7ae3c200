// Package serializer 提供可替换的二进制/文本编解码器，用于 broadcast 信封等场景。
package serializer

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ceyewan/portalgun/xerrors"
)

// 支持的序列化器类型
const (
	TypeJSON    = "json"
	TypeMsgpack = "msgpack"
)

// ErrUnsupportedSerializer 不支持的序列化器类型
var ErrUnsupportedSerializer = xerrors.Wrap(xerrors.ErrInvalidInput, "serializer: unsupported type")

// Serializer 定义序列化接口
type Serializer interface {
	Marshal(value any) ([]byte, error)
	Unmarshal(data []byte, dest any) error
	Name() string
}

// JSONSerializer JSON 序列化器
type JSONSerializer struct{}

// Marshal 序列化为 JSON
func (JSONSerializer) Marshal(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Unmarshal 从 JSON 反序列化
func (JSONSerializer) Unmarshal(data []byte, dest any) error {
	return json.Unmarshal(data, dest)
}

func (JSONSerializer) Name() string { return TypeJSON }

// MessagePackSerializer MessagePack 序列化器，字段名沿用 json tag
type MessagePackSerializer struct{}

// Marshal 序列化为 MessagePack
func (MessagePackSerializer) Marshal(value any) ([]byte, error) {
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)

	var buf bytes.Buffer
	enc.Reset(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal 从 MessagePack 反序列化
func (MessagePackSerializer) Unmarshal(data []byte, dest any) error {
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)

	dec.Reset(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(dest)
}

func (MessagePackSerializer) Name() string { return TypeMsgpack }

// New 创建序列化器
//
// 支持的序列化器类型:
//   - "json": 默认，便于在 redis-cli / nats sub 中直接查看
//   - "msgpack": 体积更小
func New(serializerType string) (Serializer, error) {
	switch serializerType {
	case TypeJSON, "":
		return JSONSerializer{}, nil
	case TypeMsgpack:
		return MessagePackSerializer{}, nil
	default:
		return nil, xerrors.Wrapf(ErrUnsupportedSerializer, "%q", serializerType)
	}
}
