package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/millemail/prospector/internal/model"
	"github.com/millemail/prospector/internal/store"
	"github.com/millemail/prospector/pkg/smartlead"
)

// Sender pushes ready prospects into a campaign and records the
// status transition.
type Sender struct {
	client     smartlead.Client
	store      store.Store
	campaignID string
}

// NewSender creates a Sender for the given campaign.
func NewSender(client smartlead.Client, st store.Store, campaignID string) *Sender {
	return &Sender{client: client, store: st, campaignID: campaignID}
}

// SendResult tallies a campaign push.
type SendResult struct {
	Batches      int
	FailedBatch  int
	Pushed       int
	AlreadyAdded int
	Invalid      int
	MarkedSent   int
}

// Push uploads prospects to the campaign in batches and marks each
// successfully uploaded prospect sent. A failed batch is logged and
// skipped; later batches still run, so one bad payload cannot strand
// the rest of the queue.
func (s *Sender) Push(ctx context.Context, prospects []model.Lead) (*SendResult, error) {
	if len(prospects) == 0 {
		return nil, eris.New("send: no prospects to push")
	}

	result := &SendResult{}
	settings := smartlead.Settings{
		IgnoreGlobalBlockList:            false,
		IgnoreUnsubscribeList:            false,
		IgnoreDuplicateLeadsInOtherCamps: false,
	}

	for start := 0; start < len(prospects); start += smartlead.MaxBatchSize {
		end := min(start+smartlead.MaxBatchSize, len(prospects))
		batch := prospects[start:end]
		result.Batches++

		records := make([]smartlead.Lead, 0, len(batch))
		for _, p := range batch {
			rec := CampaignRecordFrom(p)
			records = append(records, smartlead.Lead{
				Email:        rec.Email,
				FirstName:    rec.FirstName,
				LastName:     rec.LastName,
				CompanyName:  rec.CompanyName,
				CustomFields: rec.CustomFields,
			})
		}

		resp, err := s.client.AddLeads(ctx, s.campaignID, smartlead.AddLeadsRequest{
			LeadList: records,
			Settings: settings,
		})
		if err != nil {
			if ctx.Err() != nil {
				return result, eris.Wrap(err, "send: push batch")
			}
			zap.L().Error("batch upload failed, continuing",
				zap.Int("batch", result.Batches),
				zap.Int("size", len(batch)),
				zap.Error(err),
			)
			result.FailedBatch++
			continue
		}

		result.Pushed += resp.TotalLeads
		result.AlreadyAdded += resp.AlreadyAddedToCampaign
		result.Invalid += resp.InvalidEmailCount

		for _, p := range batch {
			if err := s.store.UpdateStatus(ctx, p.ID, model.StatusSent); err != nil {
				zap.L().Error("failed to mark prospect sent",
					zap.String("id", p.ID),
					zap.String("email", p.Email),
					zap.Error(err),
				)
				continue
			}
			result.MarkedSent++
		}

		zap.L().Info("batch uploaded",
			zap.Int("batch", result.Batches),
			zap.Int("uploaded", resp.TotalLeads),
			zap.Int("already_added", resp.AlreadyAddedToCampaign),
			zap.Int("invalid", resp.InvalidEmailCount),
		)
	}

	return result, nil
}
