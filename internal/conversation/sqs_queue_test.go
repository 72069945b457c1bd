package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type fakeSQS struct {
	sendInputs    []*sqs.SendMessageInput
	receiveInput  *sqs.ReceiveMessageInput
	deleteInputs  []*sqs.DeleteMessageInput
	receiveOutput *sqs.ReceiveMessageOutput
	err           error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sendInputs = append(f.sendInputs, params)
	return &sqs.SendMessageOutput{}, f.err
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.receiveInput = params
	if f.err != nil {
		return nil, f.err
	}
	out := f.receiveOutput
	if out == nil {
		out = &sqs.ReceiveMessageOutput{}
	}
	return out, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleteInputs = append(f.deleteInputs, params)
	return &sqs.DeleteMessageOutput{}, f.err
}

func TestSQSQueueSend(t *testing.T) {
	fake := &fakeSQS{}
	q := NewSQSQueue(fake, "https://sqs.test/dispatch")

	if err := q.Send(context.Background(), `{"id":"job-1"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.sendInputs) != 1 {
		t.Fatalf("expected 1 send, got %d", len(fake.sendInputs))
	}
	in := fake.sendInputs[0]
	if aws.ToString(in.QueueUrl) != "https://sqs.test/dispatch" {
		t.Errorf("unexpected queue url %q", aws.ToString(in.QueueUrl))
	}
	if aws.ToString(in.MessageBody) != `{"id":"job-1"}` {
		t.Errorf("unexpected body %q", aws.ToString(in.MessageBody))
	}
}

func TestSQSQueueReceive(t *testing.T) {
	fake := &fakeSQS{receiveOutput: &sqs.ReceiveMessageOutput{
		Messages: []sqstypes.Message{
			{MessageId: aws.String("m-1"), Body: aws.String("one"), ReceiptHandle: aws.String("rh-1")},
			{MessageId: aws.String("m-2"), Body: aws.String("two"), ReceiptHandle: aws.String("rh-2")},
		},
	}}
	q := NewSQSQueue(fake, "https://sqs.test/dispatch", WithSQSVisibilityTimeout(90*time.Second))

	msgs, err := q.Receive(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[1].ID != "m-2" || msgs[1].Body != "two" || msgs[1].ReceiptHandle != "rh-2" {
		t.Errorf("unexpected message: %+v", msgs[1])
	}
	in := fake.receiveInput
	if in.MaxNumberOfMessages != 5 || in.WaitTimeSeconds != 10 {
		t.Errorf("unexpected receive input: %+v", in)
	}
	if in.VisibilityTimeout != 90 {
		t.Errorf("expected visibility timeout 90s, got %d", in.VisibilityTimeout)
	}
}

func TestSQSQueueReceiveError(t *testing.T) {
	fake := &fakeSQS{err: errors.New("throttled")}
	q := NewSQSQueue(fake, "https://sqs.test/dispatch")

	if _, err := q.Receive(context.Background(), 1, 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestSQSQueueDelete(t *testing.T) {
	fake := &fakeSQS{}
	q := NewSQSQueue(fake, "https://sqs.test/dispatch")

	if err := q.Delete(context.Background(), ""); err != nil {
		t.Fatalf("empty receipt handle must be a no-op, got %v", err)
	}
	if len(fake.deleteInputs) != 0 {
		t.Fatalf("no delete call expected, got %d", len(fake.deleteInputs))
	}

	if err := q.Delete(context.Background(), "rh-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.deleteInputs) != 1 || aws.ToString(fake.deleteInputs[0].ReceiptHandle) != "rh-1" {
		t.Fatalf("unexpected delete inputs: %+v", fake.deleteInputs)
	}
}
