package nqs

func testDataset() Dataset {
	return Dataset{
		Districts: []District{
			{Key: "d1", City: "CityX", Name: "Old Town", Lon: 31.00, Lat: 30.00},
			{Key: "d2", City: "CityX", Name: "Riverside", Lon: 31.20, Lat: 30.10},
			{Key: "d3", City: "CityY", Name: "Old Town", Lon: 35.00, Lat: 32.00},
			{Key: "d4", City: "CityY", Name: "Sparse", Lon: 35.50, Lat: 32.50},
		},
		Tables: map[Category]ScoreTable{
			CategoryServices:        {"d1": 80, "d2": 60, "d3": 90},
			CategoryAccessibility:   {"d1": 70, "d2": 50, "d3": 90},
			CategoryGreenery:        {"d1": 40, "d2": 90, "d3": 90},
			CategoryEducation:       {"d1": 60, "d2": 70, "d3": 90},
			CategoryPricePercentile: {"d1": 50, "d2": 80, "d3": 90},
			CategoryNoise:           {"d1": 40, "d2": 20, "d3": 10},
		},
	}
}
