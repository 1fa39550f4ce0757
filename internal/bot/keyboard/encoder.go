package keyboard

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CallbackDataSeparator  = ":"
	CallbackDataLimitBytes = 64
)

var (
	ErrCallbackTooLong = errors.New("callback data too long")
	ErrCallbackEmpty   = errors.New("callback data is empty")
)

// EncodeCallback joins an action and its payload into Telegram callback data.
func EncodeCallback(action, data string) (string, error) {
	payload := action
	if data != "" {
		payload = action + CallbackDataSeparator + data
	}

	if len(payload) > CallbackDataLimitBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrCallbackTooLong, len(payload), CallbackDataLimitBytes)
	}

	return payload, nil
}

// DecodeCallback splits callback data at the first separator.
func DecodeCallback(callbackData string) (action, data string, err error) {
	callbackData = strings.TrimSpace(callbackData)
	if callbackData == "" {
		return "", "", ErrCallbackEmpty
	}

	action, data, _ = strings.Cut(callbackData, CallbackDataSeparator)
	return action, data, nil
}
