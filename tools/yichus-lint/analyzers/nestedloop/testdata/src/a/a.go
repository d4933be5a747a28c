package a

type Person struct {
	ID string
}

func bad(people []Person) {
	for _, a := range people {
		for _, b := range people { // want "quadratic scan: nested loop over"
			if a.ID != b.ID {
				_ = a.ID + b.ID
			}
		}
	}
}

func good(children []Person, parents []Person) {
	// Different collections - OK
	for _, c := range children {
		for _, p := range parents {
			_ = c.ID + p.ID
		}
	}
}

func goodIndexed(people []Person) {
	// Build the index in one pass, probe it in the next
	byID := make(map[string]Person, len(people))
	for _, p := range people {
		byID[p.ID] = p
	}
	for _, p := range people {
		_ = byID[p.ID]
	}
}
