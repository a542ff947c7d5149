package status

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func stringAttr(t *testing.T, av types.AttributeValue) string {
	t.Helper()
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		t.Fatalf("attribute is %T, want string member", av)
	}
	return s.Value
}

func TestUpdateInputStatusOnly(t *testing.T) {
	in := updateInput("clips", "acct1", "clipid1234", "game7", StatusFailed, true)

	if got := *in.UpdateExpression; got != "SET #data.#status = :status" {
		t.Errorf("failed status must never touch indexes, expr = %q", got)
	}
	if got := *in.ConditionExpression; got != "attribute_exists(PK)" {
		t.Errorf("condition = %q", got)
	}
	if got := stringAttr(t, in.Key["PK"]); got != "ACCOUNT#acct1" {
		t.Errorf("PK = %q", got)
	}
	if got := stringAttr(t, in.Key["SK"]); got != "#CLIP#clipid1234" {
		t.Errorf("SK = %q", got)
	}
	n, ok := in.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberN)
	if !ok || n.Value != "2" {
		t.Errorf("status value = %#v, want N 2", in.ExpressionAttributeValues[":status"])
	}
}

func TestUpdateInputNonSubscriberPublish(t *testing.T) {
	in := updateInput("clips", "acct1", "clipid1234", "game7", StatusPublished, false)
	if got := *in.UpdateExpression; got != "SET #data.#status = :status" {
		t.Errorf("non-subscriber publish must not populate indexes, expr = %q", got)
	}
}

func TestUpdateInputSubscriberPublish(t *testing.T) {
	in := updateInput("clips", "acct1", "clipid1234", "game7", StatusPublished, true)

	values := map[string]string{
		":gsi1pk": "RC#GAME#game7#clip",
		":gsi2pk": "RC#clip",
		":gsi3pk": "PC#GAME#game7",
		":gsi4pk": "PC",
		":id":     "clipid1234",
		":ulid":   "00000000000000000000000000",
	}
	for name, want := range values {
		av, ok := in.ExpressionAttributeValues[name]
		if !ok {
			t.Fatalf("missing expression value %s", name)
		}
		if got := stringAttr(t, av); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	for _, alias := range []string{"#gsi1pk", "#gsi2pk", "#gsi3pk", "#gsi4pk", "#gsi1sk", "#gsi2sk", "#gsi3sk", "#gsi4sk"} {
		if _, ok := in.ExpressionAttributeNames[alias]; !ok {
			t.Errorf("missing attribute name alias %s", alias)
		}
	}
	if got := *in.ConditionExpression; got != "attribute_exists(PK)" {
		t.Errorf("condition = %q", got)
	}
}

func TestUpdateInputShortClipID(t *testing.T) {
	in := updateInput("clips", "acct1", "ab", "game7", StatusPublished, true)
	if got := stringAttr(t, in.ExpressionAttributeValues[":gsi2pk"]); got != "RC#ab" {
		t.Errorf("short clip id prefix: gsi2pk = %q", got)
	}
}
