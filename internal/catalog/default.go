package catalog

// Default returns the built-in bright-star catalog used when no CSV path is
// configured, so the viewfinder works out of the box. Positions are J2000
// RA/Dec converted to unit directions; magnitudes and color indexes from the
// Yale Bright Star Catalog.
func Default() *Catalog {
	stars := make([]Star, len(defaultStars))
	for i, d := range defaultStars {
		stars[i] = Star{
			HIP:  d.hip,
			Name: d.name,
			Mag:  d.mag,
			CI:   d.ci,
			Dir:  dirFromRADec(d.raDeg, d.decDeg),
		}
	}
	return New(stars)
}

type brightStar struct {
	name   string
	hip    int
	raDeg  float64
	decDeg float64
	mag    float64
	ci     float64
}

var defaultStars = []brightStar{
	{"Sirius", 32349, 101.287, -16.716, -1.46, 0.00},
	{"Canopus", 30438, 95.988, -52.696, -0.74, 0.15},
	{"Arcturus", 69673, 213.915, 19.182, -0.05, 1.23},
	{"Vega", 91262, 279.235, 38.784, 0.03, 0.00},
	{"Capella", 24608, 79.172, 45.998, 0.08, 0.80},
	{"Rigel", 24436, 78.634, -8.202, 0.13, -0.03},
	{"Procyon", 37279, 114.826, 5.225, 0.34, 0.42},
	{"Achernar", 7588, 24.429, -57.237, 0.46, -0.16},
	{"Betelgeuse", 27989, 88.793, 7.407, 0.50, 1.85},
	{"Hadar", 68702, 210.956, -60.373, 0.61, -0.23},
	{"Altair", 97649, 297.696, 8.868, 0.76, 0.22},
	{"Aldebaran", 21421, 68.980, 16.509, 0.85, 1.54},
	{"Antares", 80763, 247.352, -26.432, 0.96, 1.83},
	{"Spica", 65474, 201.298, -11.161, 0.97, -0.23},
	{"Pollux", 37826, 116.329, 28.026, 1.14, 1.00},
	{"Fomalhaut", 113368, 344.413, -29.622, 1.16, 0.09},
	{"Deneb", 102098, 310.358, 45.280, 1.25, 0.09},
	{"Regulus", 49669, 152.093, 11.967, 1.35, -0.11},
	{"Adhara", 33579, 104.656, -28.972, 1.50, -0.21},
	{"Castor", 36850, 113.650, 31.889, 1.58, 0.03},
	{"Bellatrix", 25336, 81.283, 6.350, 1.64, -0.22},
	{"Elnath", 25428, 81.573, 28.608, 1.65, -0.13},
	{"Alnilam", 26311, 84.053, -1.202, 1.69, -0.18},
	{"Alnitak", 26727, 85.190, -1.943, 1.77, -0.20},
	{"Alioth", 62956, 193.507, 55.960, 1.77, -0.02},
	{"Dubhe", 54061, 165.932, 61.751, 1.79, 1.06},
	{"Mirfak", 15863, 51.081, 49.861, 1.79, 0.48},
	{"Alkaid", 67301, 206.885, 49.313, 1.86, -0.10},
	{"Polaris", 11767, 37.954, 89.264, 2.02, 0.60},
	{"Hamal", 9884, 31.793, 23.463, 2.00, 1.15},
	{"Mizar", 65378, 200.981, 54.925, 2.04, 0.02},
	{"Alpheratz", 677, 2.097, 29.091, 2.06, -0.11},
	{"Kochab", 72607, 222.676, 74.156, 2.08, 1.47},
	{"Rasalhague", 86032, 263.734, 12.560, 2.08, 0.16},
	{"Algol", 14576, 47.042, 40.957, 2.12, -0.05},
	{"Denebola", 57632, 177.265, 14.572, 2.13, 0.09},
	{"Alphecca", 76267, 233.672, 26.715, 2.23, -0.02},
	{"Mintaka", 25930, 83.002, -0.299, 2.23, -0.22},
	{"Sadr", 100453, 305.557, 40.257, 2.23, 0.68},
	{"Eltanin", 87833, 269.152, 51.489, 2.23, 1.52},
	{"Schedar", 3179, 10.127, 56.537, 2.23, 1.17},
	{"Caph", 746, 2.295, 59.150, 2.27, 0.34},
	{"Merak", 53910, 165.460, 56.382, 2.37, 0.03},
	{"Izar", 72105, 221.247, 27.074, 2.37, 0.97},
	{"Enif", 107315, 326.046, 9.875, 2.39, 1.53},
	{"Scheat", 113881, 345.944, 28.083, 2.42, 1.67},
	{"Sabik", 84012, 257.595, -15.725, 2.43, 0.06},
	{"Phecda", 58001, 178.458, 53.695, 2.44, 0.04},
	{"Alderamin", 105199, 319.645, 62.586, 2.51, 0.22},
	{"Markab", 113963, 346.190, 15.205, 2.49, -0.04},
}
