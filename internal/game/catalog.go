package game

import "github.com/sakif/jagoan-puasa/internal/model"

// DefaultAvatar is assigned to new players.
const DefaultAvatar = "🧒"

// Catalog is the static mission and reward configuration.
type Catalog struct {
	Missions []model.Mission `toml:"missions" validate:"required,min=1,dive"`
	Rewards  []model.Reward  `toml:"rewards"  validate:"required,min=1,dive"`
	Avatars  []string        `toml:"avatars"  validate:"required,min=1,dive,required"`
}

// DefaultCatalog returns the built-in Ramadan missions, shop and avatars.
func DefaultCatalog() Catalog {
	return Catalog{
		Missions: []model.Mission{
			{ID: "m1", Title: "Sahur Tepat Waktu", PointReward: 50, Icon: "🌙"},
			{ID: "m2", Title: "Sholat 5 Waktu", PointReward: 100, Icon: "🕌"},
			{ID: "m3", Title: "Baca Al-Quran", PointReward: 75, Icon: "📖"},
			{ID: "m4", Title: "Sedekah Hari Ini", PointReward: 80, Icon: "💝"},
			{ID: "m5", Title: "Bantu Orang Tua", PointReward: 60, Icon: "🏠"},
			{ID: "m6", Title: "Puasa Full!", PointReward: 150, Icon: "⭐"},
			{ID: "m7", Title: "Doa Sebelum Makan", PointReward: 30, Icon: "🤲"},
			{ID: "m8", Title: "Tidak Marah", PointReward: 40, Icon: "😊"},
		},
		Rewards: []model.Reward{
			{ID: "r1", Title: "Es Krim 🍦", Cost: 200, Icon: "🍦"},
			{ID: "r2", Title: "Mainan Baru 🎮", Cost: 1000, Icon: "🎮"},
			{ID: "r3", Title: "Buku Cerita 📚", Cost: 300, Icon: "📚"},
			{ID: "r4", Title: "Jalan-Jalan 🎡", Cost: 1500, Icon: "🎡", GrandPrize: true},
			{ID: "r5", Title: "Stiker Keren ✨", Cost: 100, Icon: "✨"},
		},
		Avatars: []string{"🧒", "👳‍♂️", "🧕", "🧢", "👦", "👧", "🧑‍🎓", "👨‍🚀", "🦸"},
	}
}

func (c Catalog) Mission(id string) (model.Mission, bool) {
	for _, m := range c.Missions {
		if m.ID == id {
			return m, true
		}
	}
	return model.Mission{}, false
}

func (c Catalog) Reward(id string) (model.Reward, bool) {
	for _, r := range c.Rewards {
		if r.ID == id {
			return r, true
		}
	}
	return model.Reward{}, false
}

func (c Catalog) HasAvatar(avatar string) bool {
	for _, a := range c.Avatars {
		if a == avatar {
			return true
		}
	}
	return false
}
