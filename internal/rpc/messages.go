package rpc

import (
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names of the request and response documents.
const (
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldUserID       = "userId"
	FieldAccessToken  = "accessToken"
	FieldRefreshToken = "refreshToken"
	FieldID           = "id"
	FieldData         = "data"
	FieldEntries      = "entries"
	FieldURL          = "url"
)

// Credentials is the payload of SignUp and SignIn.
type Credentials struct {
	Email    string
	Password string
}

// Session is returned by SignUp, SignIn and RefreshToken.
type Session struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

func (c Credentials) Struct() *structpb.Struct {
	return mustStruct(map[string]any{FieldEmail: c.Email, FieldPassword: c.Password})
}

func CredentialsFromStruct(s *structpb.Struct) Credentials {
	return Credentials{Email: str(s, FieldEmail), Password: str(s, FieldPassword)}
}

func (s Session) Struct() *structpb.Struct {
	return mustStruct(map[string]any{
		FieldUserID:       s.UserID,
		FieldAccessToken:  s.AccessToken,
		FieldRefreshToken: s.RefreshToken,
	})
}

func SessionFromStruct(s *structpb.Struct) Session {
	return Session{
		UserID:       str(s, FieldUserID),
		AccessToken:  str(s, FieldAccessToken),
		RefreshToken: str(s, FieldRefreshToken),
	}
}

// RefreshRequest wraps a refresh token.
func RefreshRequest(token string) *structpb.Struct {
	return mustStruct(map[string]any{FieldRefreshToken: token})
}

// IDRequest wraps a document id.
func IDRequest(id string) *structpb.Struct {
	return mustStruct(map[string]any{FieldID: id})
}

// ID reads the "id" field of s.
func ID(s *structpb.Struct) string {
	return str(s, FieldID)
}

// URLResponse wraps a download link.
func URLResponse(url string) *structpb.Struct {
	return mustStruct(map[string]any{FieldURL: url})
}

// URL reads the "url" field of s.
func URL(s *structpb.Struct) string {
	return str(s, FieldURL)
}

// EntryStruct encodes e as {"id": ..., "data": <record>}.
func EntryStruct(e journal.Entry) (*structpb.Struct, error) {
	return structpb.NewStruct(entryMap(e))
}

// EntryFromStruct decodes {"id": ..., "data": <record>}. A missing or
// malformed data field decodes to an entry with only the id set.
func EntryFromStruct(s *structpb.Struct) journal.Entry {
	if s == nil {
		return journal.Entry{}
	}
	var rec map[string]any
	if data := s.GetFields()[FieldData].GetStructValue(); data != nil {
		rec = data.AsMap()
	}
	return journal.FromRecord(str(s, FieldID), rec)
}

// SnapshotStruct encodes a full replacement list of entries.
func SnapshotStruct(entries []journal.Entry) (*structpb.Struct, error) {
	list := make([]any, 0, len(entries))
	for _, e := range entries {
		list = append(list, entryMap(e))
	}
	return structpb.NewStruct(map[string]any{FieldEntries: list})
}

// EntriesFromSnapshot decodes a snapshot. Elements that are not documents
// are skipped.
func EntriesFromSnapshot(s *structpb.Struct) []journal.Entry {
	values := s.GetFields()[FieldEntries].GetListValue().GetValues()
	out := make([]journal.Entry, 0, len(values))
	for _, v := range values {
		doc := v.GetStructValue()
		if doc == nil {
			continue
		}
		out = append(out, EntryFromStruct(doc))
	}
	return out
}

func entryMap(e journal.Entry) map[string]any {
	return map[string]any{FieldID: e.ID, FieldData: e.ToRecord()}
}

func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func mustStruct(m map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(m)
	if err != nil {
		panic(fmt.Sprintf("rpc: building message: %v", err))
	}
	return s
}
