package repository

import (
	"encoding/json"

	"github.com/hitoshi/cardoctor/internal/model"
)

// DemoServices はメモリストアに投入するデモ用のサービスカタログを返す。
// 内容はデータベースのシードマイグレーションと同一。
func DemoServices() []model.Service {
	return []model.Service{
		{
			ID:          "0f8b4c1e-6a53-4f7d-9a4e-2f9c1d7b3a01",
			Title:       "Engine Tune-Up",
			Price:       120.00,
			ServiceID:   "01",
			Img:         "https://i.ibb.co/engine-tune-up.jpg",
			Email:       "service@cardoctor.example",
			Description: "Spark plugs, filters and ignition timing checked and adjusted.",
			Facility:    facility("Instant Car Services", "24/7 Quality Service"),
		},
		{
			ID:          "1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e02",
			Title:       "Brake Pad Replacement",
			Price:       85.50,
			ServiceID:   "02",
			Img:         "https://i.ibb.co/brake-pad.jpg",
			Email:       "service@cardoctor.example",
			Description: "Front and rear pads replaced with rotor inspection.",
			Facility:    facility("Easy Customer Service", "Quality Cost Service"),
		},
		{
			ID:          "2d3e4f5a-6b7c-4d8e-9f0a-1b2c3d4e5f03",
			Title:       "Engine Oil Change",
			Price:       45.00,
			ServiceID:   "03",
			Img:         "https://i.ibb.co/oil-change.jpg",
			Email:       "service@cardoctor.example",
			Description: "Synthetic oil and filter change with a fluid top-up.",
			Facility:    facility("Instant Car Services", "Easy Customer Service"),
		},
		{
			ID:          "3e4f5a6b-7c8d-4e9f-8a1b-2c3d4e5f6a04",
			Title:       "Battery Charge",
			Price:       30.00,
			ServiceID:   "04",
			Img:         "https://i.ibb.co/battery.jpg",
			Email:       "service@cardoctor.example",
			Description: "Battery load test and full recharge.",
			Facility:    facility("24/7 Quality Service"),
		},
		{
			ID:          "4f5a6b7c-8d9e-4f0a-9b2c-3d4e5f6a7b05",
			Title:       "Full Car Repair",
			Price:       350.00,
			ServiceID:   "05",
			Img:         "https://i.ibb.co/full-repair.jpg",
			Email:       "service@cardoctor.example",
			Description: "Complete mechanical and electrical diagnosis and repair.",
			Facility:    facility("Instant Car Services", "24/7 Quality Service", "Quality Cost Service"),
		},
		{
			ID:          "5a6b7c8d-9e0f-4a1b-8c3d-4e5f6a7b8c06",
			Title:       "Electrical System",
			Price:       150.00,
			ServiceID:   "06",
			Img:         "https://i.ibb.co/electrical.jpg",
			Email:       "service@cardoctor.example",
			Description: "Wiring, alternator and starter diagnostics.",
			Facility:    facility("Easy Customer Service"),
		},
	}
}

func facility(names ...string) json.RawMessage {
	type item struct {
		Name string `json:"name"`
	}
	items := make([]item, len(names))
	for i, n := range names {
		items[i] = item{Name: n}
	}
	data, _ := json.Marshal(items)
	return data
}
