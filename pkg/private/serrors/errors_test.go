// Copyright 2019 Anapaya Systems
// Copyright 2026 The ddspipe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serrors_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ddspipe/ddspipe/pkg/private/serrors"
)

type testErrType struct {
	msg string
}

func (e *testErrType) Error() string {
	return e.msg
}

func TestWrap(t *testing.T) {
	t.Run("Is", func(t *testing.T) {
		err := serrors.New("simple err")
		wrapped := serrors.Wrap("msg", err, "someCtx", "someValue")
		assert.ErrorIs(t, wrapped, err)
		assert.ErrorIs(t, wrapped, wrapped)
	})
	t.Run("As", func(t *testing.T) {
		err := &testErrType{msg: "test err"}
		wrapped := serrors.WrapNoStack("msg", err, "someCtx", "someValue")
		var errAs *testErrType
		require.True(t, errors.As(wrapped, &errAs))
		assert.Equal(t, err, errAs)
	})
	t.Run("message", func(t *testing.T) {
		err := serrors.WrapNoStack("outer", errors.New("inner"), "k1", 1, "k0", "v0")
		assert.Equal(t, "outer {k0=v0; k1=1}: inner", err.Error())
	})
}

func TestJoin(t *testing.T) {
	sentinel := errors.New("sentinel")
	t.Run("nil nil", func(t *testing.T) {
		assert.NoError(t, serrors.Join(nil, nil))
		assert.NoError(t, serrors.JoinNoStack(nil, nil))
	})
	t.Run("Is both", func(t *testing.T) {
		cause := serrors.New("cause")
		err := serrors.Join(sentinel, cause, "id", "p1")
		assert.ErrorIs(t, err, sentinel)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "sentinel {id=p1}: cause", err.Error())
	})
	t.Run("no cause", func(t *testing.T) {
		err := serrors.JoinNoStack(sentinel, nil, "id", "p1")
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, "sentinel {id=p1}", err.Error())
	})
}

func TestNew(t *testing.T) {
	err1 := serrors.New("err msg", "someCtx", "value")
	err2 := serrors.New("err msg", "someCtx", "value")
	assert.ErrorIs(t, err1, err1)
	assert.False(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err2, err1))
}

func TestList(t *testing.T) {
	assert.NoError(t, serrors.List(nil).ToError())
	sentinel := errors.New("sentinel")
	l := serrors.List{errors.New("a"), serrors.Join(sentinel, nil)}
	err := l.ToError()
	require.Error(t, err)
	assert.Equal(t, "[ a; sentinel ]", err.Error())
	assert.ErrorIs(t, err, sentinel)
}

func TestEncoding(t *testing.T) {
	var buf bytes.Buffer
	logger := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{MessageKey: "msg"}),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	))
	err := serrors.WrapNoStack("msg error", serrors.JoinNoStack(errors.New("base"), nil),
		"k0", "v0")
	logger.Info("test", zap.Any("error", err))
	require.NoError(t, logger.Sync())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	errObj, ok := decoded["error"].(map[string]any)
	require.True(t, ok, "error should be encoded as object: %s", buf.String())
	assert.Equal(t, "msg error", errObj["msg"])
	assert.Equal(t, "v0", errObj["k0"])
	cause, ok := errObj["cause"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "base", cause["msg"])
}
