package models_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
)

func TestTopicCloseWhileSkippedForcesOpen(t *testing.T) {
	topic := models.Topic{ID: models.NewID(), Subject: "skipped", IsOpen: true}
	topic.ToggleSkip()
	if !topic.IsSkipped {
		t.Fatal("expected topic to be skipped")
	}

	topic.Close()
	if !topic.IsOpen {
		t.Error("closing a skipped topic must leave it open")
	}
}

func TestTopicToggleSkipForcesOpen(t *testing.T) {
	topic := models.Topic{ID: models.NewID(), Subject: "closed"}
	if topic.IsOpen {
		t.Fatal("precondition: topic starts closed")
	}

	topic.ToggleSkip()
	if !topic.IsSkipped || !topic.IsOpen {
		t.Errorf("skipping must force the topic open: skipped=%v open=%v",
			topic.IsSkipped, topic.IsOpen)
	}

	topic.ToggleSkip()
	if topic.IsSkipped {
		t.Error("second toggle must unskip")
	}
	if !topic.IsOpen {
		t.Error("unskipping must not silently close the topic")
	}
}

func TestTopicCanBeCarriedForward(t *testing.T) {
	origin := primitive.NewObjectID()

	tests := []struct {
		name  string
		topic models.Topic
		want  bool
	}{
		{"open topic", models.Topic{IsOpen: true}, true},
		{"recurring closed topic", models.Topic{IsRecurring: true}, true},
		{"skipped topic", models.Topic{IsSkipped: true, IsOpen: true}, true},
		{"closed plain topic", models.Topic{}, false},
		{
			"closed topic with open action item",
			models.Topic{Items: []models.Item{
				{ID: models.NewID(), Kind: models.ItemKindAction, IsOpen: true, OriginMinutesID: origin},
			}},
			true,
		},
		{
			"closed topic with sticky info item",
			models.Topic{Items: []models.Item{
				{ID: models.NewID(), Kind: models.ItemKindInfo, IsSticky: true, OriginMinutesID: origin},
			}},
			true,
		},
		{
			"closed topic with closed action and unsticky info",
			models.Topic{Items: []models.Item{
				{ID: models.NewID(), Kind: models.ItemKindAction},
				{ID: models.NewID(), Kind: models.ItemKindInfo},
			}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.topic.CanBeCarriedForward(); got != tt.want {
				t.Errorf("CanBeCarriedForward() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopicTailorForCarryForward(t *testing.T) {
	origin := primitive.NewObjectID()
	topic := models.Topic{
		ID:      models.NewID(),
		Subject: "budget",
		IsOpen:  true,
		IsNew:   true,
		Items: []models.Item{
			{ID: "a1", Kind: models.ItemKindAction, IsOpen: true, IsNew: true, OriginMinutesID: origin},
			{ID: "a2", Kind: models.ItemKindAction, IsOpen: false, OriginMinutesID: origin},
			{ID: "i1", Kind: models.ItemKindInfo, IsSticky: true, IsNew: true, OriginMinutesID: origin},
			{ID: "i2", Kind: models.ItemKindInfo, IsSticky: false, OriginMinutesID: origin},
		},
	}

	tailored := topic.TailorForCarryForward()

	if tailored.IsNew {
		t.Error("tailored topic must not be new")
	}
	if len(tailored.Items) != 2 {
		t.Fatalf("expected 2 surviving items, got %d", len(tailored.Items))
	}
	for _, it := range tailored.Items {
		if it.IsNew {
			t.Errorf("item %s: IsNew must be cleared on carry-forward", it.ID)
		}
	}
	if tailored.Items[0].ID != "a1" || tailored.Items[1].ID != "i1" {
		t.Errorf("wrong items survived: %s, %s", tailored.Items[0].ID, tailored.Items[1].ID)
	}

	// The original is untouched.
	if len(topic.Items) != 4 || !topic.IsNew {
		t.Error("TailorForCarryForward must not mutate the receiver")
	}
}

func TestTopicAddItem(t *testing.T) {
	topic := models.Topic{ID: models.NewID(), Subject: "infra"}

	first := models.Item{Kind: models.ItemKindInfo, Subject: "first"}
	if err := topic.AddItem(first); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if topic.Items[0].ID == "" {
		t.Error("expected an id to be assigned")
	}
	if !topic.Items[0].IsNew {
		t.Error("fresh item must be marked new")
	}

	second := models.Item{Kind: models.ItemKindAction, Subject: "second"}
	if err := topic.AddItem(second); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if topic.Items[0].Subject != "second" {
		t.Error("new items must be prepended")
	}

	dup := models.Item{ID: topic.Items[0].ID, Kind: models.ItemKindInfo}
	if err := topic.AddItem(dup); err != models.ErrDuplicateItemID {
		t.Errorf("expected ErrDuplicateItemID, got %v", err)
	}
}

func TestTopicIsDeleteAllowed(t *testing.T) {
	origin := primitive.NewObjectID()
	other := primitive.NewObjectID()

	topic := models.Topic{ID: models.NewID(), OriginMinutesID: origin}
	if !topic.IsDeleteAllowed(origin) {
		t.Error("topic created in the current minutes must be deletable")
	}
	if topic.IsDeleteAllowed(other) {
		t.Error("carried-in topic must not be deletable")
	}
}
