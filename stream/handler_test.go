package stream_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/constellation/model/altarf"
	"github.com/jacentio/constellation/store"
	"github.com/jacentio/constellation/stream"
)

func newHandler(t *testing.T) *stream.Handler {
	t.Helper()
	r := store.NewRegistry()
	if err := altarf.Register(r); err != nil {
		t.Fatalf("register: %v", err)
	}
	return stream.NewHandler(r, store.DefaultConfig(), nil)
}

func pairRecord(eventName, id, teacherID string) events.DynamoDBEventRecord {
	keys := map[string]events.DynamoDBAttributeValue{
		"projectEntity": events.NewStringAttribute(string(altarf.EntityTeacherStudentPair)),
		"creationId":    events.NewStringAttribute(id),
	}
	image := map[string]events.DynamoDBAttributeValue{
		"projectEntity": events.NewStringAttribute(string(altarf.EntityTeacherStudentPair)),
		"creationId":    events.NewStringAttribute(id),
		"teacherId":     events.NewStringAttribute(teacherID),
		"studentId":     events.NewStringAttribute("student"),
		"quizes": events.NewListAttribute([]events.DynamoDBAttributeValue{
			events.NewMapAttribute(map[string]events.DynamoDBAttributeValue{
				"quizId": events.NewStringAttribute("q1"),
				"status": events.NewStringAttribute("TODO"),
				"time":   events.NewNumberAttribute("10"),
			}),
		}),
	}

	record := events.DynamoDBEventRecord{
		EventID:   "evt-" + id,
		EventName: eventName,
		Change:    events.DynamoDBStreamRecord{Keys: keys},
	}
	switch eventName {
	case stream.EventInsert:
		record.Change.NewImage = image
	case stream.EventModify:
		record.Change.OldImage = image
		record.Change.NewImage = image
	case stream.EventRemove:
		record.Change.OldImage = image
	}
	return record
}

func TestNewHandler_Defaults(t *testing.T) {
	h := stream.NewHandler(nil, store.Config{}, nil)
	if h == nil {
		t.Fatal("expected non-nil Handler")
	}
}

func TestHandler_HandleEvent_EmptyEvent(t *testing.T) {
	h := newHandler(t)

	if err := h.HandleEvent(context.Background(), events.DynamoDBEvent{}); err != nil {
		t.Errorf("expected no error for empty event, got %v", err)
	}
}

func TestHandler_HandleEvent_Dispatch(t *testing.T) {
	h := newHandler(t)

	var changes []stream.Change
	h.Subscribe(altarf.EntityTeacherStudentPair, func(ctx context.Context, c stream.Change) error {
		changes = append(changes, c)
		return nil
	})

	event := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		pairRecord(stream.EventInsert, "p1", "t1"),
		pairRecord(stream.EventModify, "p1", "t1"),
		pairRecord(stream.EventRemove, "p1", "t1"),
	}}
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(changes))
	}
	want := store.DbKey{ProjectEntity: altarf.EntityTeacherStudentPair, CreationID: "p1"}
	for _, c := range changes {
		if c.Key != want {
			t.Errorf("expected key %s, got %s", want, c.Key)
		}
		if c.Schema.Partition != altarf.EntityTeacherStudentPair {
			t.Errorf("expected schema of pair, got %+v", c.Schema)
		}
	}
	if changes[0].OldImage != nil || changes[0].NewImage == nil {
		t.Error("expected INSERT with only a new image")
	}
	if changes[2].OldImage == nil || changes[2].NewImage != nil {
		t.Error("expected REMOVE with only an old image")
	}
}

func TestHandler_HandleEvent_Decode(t *testing.T) {
	h := newHandler(t)

	var got *altarf.TeacherStudentPair
	h.Subscribe(altarf.EntityTeacherStudentPair, func(ctx context.Context, c stream.Change) error {
		var err error
		got, err = stream.Decode[altarf.TeacherStudentPair](c.NewImage)
		return err
	})

	event := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		pairRecord(stream.EventInsert, "p1", "t1"),
	}}
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if got == nil {
		t.Fatal("expected decoded pair")
	}
	if got.TeacherID != "t1" || got.CreationID != "p1" {
		t.Errorf("unexpected pair %+v", *got)
	}
	if len(got.Quizes) != 1 || got.Quizes[0].Time != 10 || got.Quizes[0].Status != altarf.QuizStatusTodo {
		t.Errorf("unexpected quizes %+v", got.Quizes)
	}
}

func TestDecode_NilImage(t *testing.T) {
	got, err := stream.Decode[altarf.User](nil)
	if err != nil || got != nil {
		t.Errorf("expected nil, nil, got %v, %v", got, err)
	}
}

func TestHandler_HandleEvent_SkipsUnknownPartition(t *testing.T) {
	h := newHandler(t)
	called := false
	h.Subscribe(altarf.EntityTeacherStudentPair, func(ctx context.Context, c stream.Change) error {
		called = true
		return nil
	})

	event := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		{
			EventName: stream.EventInsert,
			Change: events.DynamoDBStreamRecord{
				Keys: map[string]events.DynamoDBAttributeValue{
					"projectEntity": events.NewStringAttribute("legacy-thing"),
					"creationId":    events.NewStringAttribute("x"),
				},
			},
		},
		{
			EventName: stream.EventInsert,
			Change: events.DynamoDBStreamRecord{
				Keys: map[string]events.DynamoDBAttributeValue{
					"id": events.NewStringAttribute("no-partition"),
				},
			},
		},
	}}

	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Errorf("expected unknown partitions skipped, got %v", err)
	}
	if called {
		t.Error("expected no subscriber call")
	}
}

func TestHandler_HandleEvent_SubscriberErrorAbortsBatch(t *testing.T) {
	h := newHandler(t)
	boom := errors.New("downstream unavailable")

	calls := 0
	h.Subscribe(altarf.EntityTeacherStudentPair, func(ctx context.Context, c stream.Change) error {
		calls++
		return boom
	})

	event := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		pairRecord(stream.EventInsert, "p1", "t1"),
		pairRecord(stream.EventInsert, "p2", "t1"),
	}}

	err := h.HandleEvent(context.Background(), event)
	if !errors.Is(err, boom) {
		t.Errorf("expected subscriber error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected batch aborted after first failure, got %d calls", calls)
	}
}

func TestHandler_HandleEvent_OnlySubscribedPartition(t *testing.T) {
	h := newHandler(t)
	calls := 0
	h.Subscribe(altarf.EntityQuiz, func(ctx context.Context, c stream.Change) error {
		calls++
		return nil
	})
	h.Subscribe(altarf.EntityQuiz, stream.LogChanges(nil))

	event := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		pairRecord(stream.EventInsert, "p1", "t1"),
	}}
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no call for other partition, got %d", calls)
	}
}
