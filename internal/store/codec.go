package store

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
)

var codec = sonic.ConfigStd

func encodeSession(session *interview.Session) ([]byte, error) {
	data, err := codec.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	return data, nil
}

func decodeSession(data []byte) (*interview.Session, error) {
	var session interview.Session
	if err := codec.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func stampCreated(session *interview.Session) {
	now := time.Now().UTC()
	session.Version = 1
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now
	}
}
