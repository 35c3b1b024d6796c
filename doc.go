// Package maxminddb provides a read-only reader for the MaxMind DB (MMDB)
// binary file format: a single-file, memory-mappable database that maps IP
// addresses to arbitrarily structured data records.
//
// # Basic Usage
//
//	db, err := maxminddb.Open("GeoLite2-City.mmdb")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	result := db.Lookup("81.2.69.142")
//	if result.Err() != nil {
//		log.Fatal(result.Err())
//	}
//	if !result.Found() {
//		fmt.Println("no record for this address")
//		return
//	}
//
//	v, err := result.Value()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if m, ok := v.AsMap(); ok {
//		if country, ok := m.Get("country"); ok {
//			fmt.Println(country)
//		}
//	}
//
// # Data Model
//
// A lookup returns a Value: a tagged union over strings, binary blobs, the
// fixed-width numeric kinds the format defines, booleans, insertion-ordered
// maps, and ordered arrays. There is no reflection-based struct decoding in
// this reader; callers navigate the Value tree directly via its accessors
// (AsString, AsUint32, AsMap, and so on).
//
// # Network Iteration
//
// Networks walks the whole search tree and yields every (prefix, Value)
// pair the database defines:
//
//	for result := range db.Networks() {
//		v, err := result.Value()
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Printf("%s -> %v\n", result.Prefix(), v)
//	}
//
// # Thread Safety
//
// A Reader is immutable after Open/FromBytes returns. All of its methods
// are safe for concurrent use by multiple goroutines; lookups are pure
// reads against the immutable mapped bytes and perform no synchronization.
package maxminddb
