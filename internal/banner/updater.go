package banner

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/logger"
)

// Persister stores the banner after an update.
type Persister interface {
	Save(cfg gacha.Config) error
}

var errUnchanged = errors.New("banner unchanged")

// Updater fetches announcements and applies them to the shared banner.
// It never touches user pity state.
type Updater struct {
	banner    *gacha.Banner
	fetcher   Fetcher
	persister Persister
	permanent string
}

// NewUpdater wires an updater. persister may be nil to skip persistence.
func NewUpdater(b *gacha.Banner, f Fetcher, p Persister, permanent string) *Updater {
	return &Updater{banner: b, fetcher: f, persister: p, permanent: permanent}
}

// Run performs one fetch-apply-persist cycle. It returns the applied
// announcement, or nil when the banner did not change.
func (u *Updater) Run(ctx context.Context) (*Announcement, error) {
	ann, err := u.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if ann == nil {
		return nil, nil
	}

	err = u.banner.Update(func(cfg *gacha.Config) error {
		if !Apply(cfg, *ann, u.permanent) {
			return errUnchanged
		}
		return nil
	})
	if errors.Is(err, errUnchanged) {
		logger.Debug("banner unchanged", zap.String("title", ann.Title))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info("banner updated",
		zap.String("title", ann.Title),
		zap.Int("six_star", len(ann.SixStarItems)),
		zap.Int("five_star", len(ann.FiveStarItems)),
		zap.Int("four_star", len(ann.FourStarItems)),
	)

	if u.persister != nil {
		if err := u.persister.Save(u.banner.Snapshot()); err != nil {
			return ann, err
		}
	}
	return ann, nil
}
