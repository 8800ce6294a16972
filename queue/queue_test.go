package queue

import (
	"testing"
)

func TestEnqueueMessages(t *testing.T) {
	q := New(10)

	msg, err := q.Enqueue(Job{Name: "first"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if msg != "" {
		t.Errorf("first enqueue message = %q", msg)
	}

	msg, err = q.Enqueue(Job{Name: "second"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if msg != "There is 1 render in the queue ahead of you." {
		t.Errorf("second enqueue message = %q", msg)
	}

	msg, _ = q.Enqueue(Job{Name: "third"})
	if msg != "There are 2 renders in the queue ahead of you." {
		t.Errorf("third enqueue message = %q", msg)
	}
}

func TestEnqueueFull(t *testing.T) {
	q := New(2)
	if _, err := q.Enqueue(Job{Name: "a"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := q.Enqueue(Job{Name: "b"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := q.Enqueue(Job{Name: "c"}); err == nil {
		t.Fatal("expected full queue error")
	}
}

func TestUnboundedQueue(t *testing.T) {
	q := New(0)
	for i := 0; i < 50; i++ {
		if _, err := q.Enqueue(Job{Name: "job"}); err != nil {
			t.Fatalf("Enqueue %d: %v", i, err)
		}
	}
	if q.Len() != 50 {
		t.Errorf("Len = %d", q.Len())
	}
}

func TestEnqueueFrontOrdering(t *testing.T) {
	q := New(10)
	q.Enqueue(Job{Name: "normal"})
	msg, err := q.EnqueueFront(Job{Name: "priority"})
	if err != nil {
		t.Fatalf("EnqueueFront: %v", err)
	}
	if msg == "" {
		t.Error("expected front-of-queue message when queue was busy")
	}

	if first := q.Peek(); first == nil || first.Name != "priority" {
		t.Errorf("Peek = %+v", first)
	}
}

func TestDequeueOrder(t *testing.T) {
	q := New(10)
	q.Enqueue(Job{Name: "a"})
	q.Enqueue(Job{Name: "b"})

	if job := q.Dequeue(); job == nil || job.Name != "a" {
		t.Errorf("first dequeue = %+v", job)
	}
	if job := q.Dequeue(); job == nil || job.Name != "b" {
		t.Errorf("second dequeue = %+v", job)
	}
	if job := q.Dequeue(); job != nil {
		t.Errorf("dequeue on empty = %+v", job)
	}
}

func TestNameListAndClear(t *testing.T) {
	q := New(10)
	q.Enqueue(Job{Name: "a"})
	q.Enqueue(Job{Name: "b"})

	names := q.NameList()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("NameList = %v", names)
	}

	q.Clear()
	if !q.IsEmpty() {
		t.Error("queue not empty after Clear")
	}
}
