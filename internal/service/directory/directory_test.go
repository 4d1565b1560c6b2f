package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/repository/memory"
)

func ptr(s string) *string { return &s }

func TestLocationLifecycleBroadcasts(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), nil, nil)
	events, cancel := svc.LocationEvents().Subscribe()
	defer cancel()

	pune, err := svc.CreateLocation(ctx, "  Pune ")
	if err != nil {
		t.Fatalf("CreateLocation() error = %v", err)
	}
	if _, err := svc.CreateLocation(ctx, "Pune"); !errors.Is(err, ErrNameTaken) {
		t.Errorf("duplicate CreateLocation() error = %v, want ErrNameTaken", err)
	}
	if _, err := svc.CreateLocation(ctx, " "); !errors.Is(err, ErrNameRequired) {
		t.Errorf("blank CreateLocation() error = %v, want ErrNameRequired", err)
	}

	nashik, _ := svc.CreateLocation(ctx, "Nashik")
	if _, err := svc.RenameLocation(ctx, nashik.ID, "Pune"); !errors.Is(err, ErrNameTaken) {
		t.Errorf("RenameLocation() onto another name error = %v, want ErrNameTaken", err)
	}
	if _, err := svc.RenameLocation(ctx, pune.ID, "Pune"); err != nil {
		t.Errorf("RenameLocation() to own name error = %v", err)
	}
	if err := svc.DeleteLocation(ctx, nashik.ID); err != nil {
		t.Fatalf("DeleteLocation() error = %v", err)
	}

	want := []models.LocationEvent{
		{Kind: models.LocationCreated, ID: pune.ID, Name: "Pune"},
		{Kind: models.LocationCreated, ID: nashik.ID, Name: "Nashik"},
		{Kind: models.LocationUpdated, ID: pune.ID, Name: "Pune"},
		{Kind: models.LocationDeleted, ID: nashik.ID, Name: "Nashik"},
	}
	for i, w := range want {
		select {
		case got := <-events:
			if got != w {
				t.Errorf("event %d = %+v, want %+v", i, got, w)
			}
		default:
			t.Fatalf("event %d missing", i)
		}
	}

	locations, _ := svc.ListLocations(ctx)
	if len(locations) != 1 || locations[0].Name != "Pune" {
		t.Errorf("locations = %+v", locations)
	}
}

func TestBroadcasterCancel(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()
	if b.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", b.Subscribers())
	}
	cancel()
	cancel()
	if _, open := <-ch; open {
		t.Error("channel still open after cancel")
	}
	if n := b.Publish(models.LocationEvent{Kind: models.LocationCreated}); n != 0 {
		t.Errorf("Publish() delivered to %d, want 0", n)
	}
}

func TestBroadcasterDropsForSlowSubscriber(t *testing.T) {
	b := NewBroadcaster()
	_, cancel := b.Subscribe()
	defer cancel()
	for i := 0; i < subscriberBuffer; i++ {
		b.Publish(models.LocationEvent{})
	}
	if n := b.Publish(models.LocationEvent{}); n != 0 {
		t.Errorf("Publish() to a full subscriber delivered %d, want 0", n)
	}
}

func TestLeads(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), nil, nil)
	pune, _ := svc.CreateLocation(ctx, "Pune")

	if _, err := svc.CreateLead(ctx, models.Lead{Name: ""}); !errors.Is(err, ErrNameRequired) {
		t.Errorf("CreateLead() without name error = %v", err)
	}
	if _, err := svc.CreateLead(ctx, models.Lead{Name: "X", LocationID: "nowhere"}); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("CreateLead() with unknown location error = %v", err)
	}

	lead, err := svc.CreateLead(ctx, models.Lead{Name: " Sharma Traders ", LocationID: pune.ID, DealStatus: "Need To Visit"})
	if err != nil {
		t.Fatalf("CreateLead() error = %v", err)
	}
	if lead.Name != "Sharma Traders" || lead.LocationName != "Pune" {
		t.Errorf("lead = %+v", lead)
	}
	svc.CreateLead(ctx, models.Lead{Name: "Other", DealStatus: "Deal Closed"})

	updated, err := svc.UpdateLead(ctx, lead.ID, models.LeadPatch{DealStatus: ptr("In Discussion"), Comments: ptr(" call back ")})
	if err != nil {
		t.Fatalf("UpdateLead() error = %v", err)
	}
	if updated.DealStatus != "In Discussion" || updated.Comments != "call back" || updated.Name != "Sharma Traders" || updated.LocationID != pune.ID {
		t.Errorf("updated = %+v, want only patched fields changed", updated)
	}

	tests := []struct {
		name   string
		filter models.LeadFilter
		want   int
	}{
		{name: "all", filter: models.LeadFilter{}, want: 2},
		{name: "by location", filter: models.LeadFilter{LocationID: pune.ID}, want: 1},
		{name: "by statuses", filter: models.LeadFilter{DealStatuses: ParseDealStatuses("Deal Closed, In Discussion,")}, want: 2},
		{name: "no match", filter: models.LeadFilter{DealStatuses: []string{"Deal Rejected"}}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListLeads(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListLeads() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("ListLeads() = %d leads, want %d", len(got), tt.want)
			}
		})
	}

	if err := svc.DeleteLocation(ctx, pune.ID); err != nil {
		t.Fatalf("DeleteLocation() error = %v", err)
	}
	if left, _ := svc.ListLeads(ctx, models.LeadFilter{}); len(left) != 1 {
		t.Errorf("leads after deleting location = %d, want 1", len(left))
	}
}

func TestClients(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), nil, nil)

	c, err := svc.SaveClient(ctx, "", models.Client{Name: " Acme ", GST: "27abcde1234f1z5"})
	if err != nil {
		t.Fatalf("SaveClient() error = %v", err)
	}
	if c.Name != "Acme" || c.GST != "27ABCDE1234F1Z5" || c.ID == "" {
		t.Errorf("client = %+v", c)
	}
	if _, err := svc.SaveClient(ctx, "", models.Client{Name: "Acme"}); !errors.Is(err, ErrNameTaken) {
		t.Errorf("duplicate SaveClient() error = %v, want ErrNameTaken", err)
	}
	if _, err := svc.SaveClient(ctx, c.ID, models.Client{Name: ""}); !errors.Is(err, ErrNameRequired) {
		t.Errorf("blank SaveClient() error = %v, want ErrNameRequired", err)
	}

	svc.SaveClient(ctx, "", models.Client{Name: "Bharat Chem"})
	found, _ := svc.ListClients(ctx, "acm")
	if len(found) != 1 || found[0].ID != c.ID {
		t.Errorf("ListClients(acm) = %+v", found)
	}
}
