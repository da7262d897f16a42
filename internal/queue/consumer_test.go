package queue

import (
    "bytes"
    "encoding/json"
    "strings"
    "testing"
)

func TestActivityLogAppend(t *testing.T) {
    var buf bytes.Buffer
    l := NewActivityLog(&buf)

    ev := NewEvent(EventAnnonceValidated, 3)
    ev.AnnonceID = 7
    ev.TargetID = 4
    body, _ := json.Marshal(ev)
    if err := l.Append(body); err != nil {
        t.Fatalf("append: %v", err)
    }

    line := buf.String()
    for _, want := range []string{"annonce.validated", "actor=3", "target=4", "annonce=7", "id=" + ev.ID} {
        if !strings.Contains(line, want) {
            t.Errorf("line %q missing %q", line, want)
        }
    }
    if strings.Contains(line, "stars=") {
        t.Errorf("zero fields should be omitted: %q", line)
    }
    if !strings.HasSuffix(line, "\n") {
        t.Errorf("line not newline terminated")
    }
}

func TestActivityLogRejectsGarbage(t *testing.T) {
    var buf bytes.Buffer
    l := NewActivityLog(&buf)
    if err := l.Append([]byte("not json")); err == nil {
        t.Error("expected error for invalid json")
    }
    if err := l.Append([]byte(`{"id":"x"}`)); err == nil {
        t.Error("expected error for missing type")
    }
    if buf.Len() != 0 {
        t.Errorf("nothing should be written, got %q", buf.String())
    }
}
