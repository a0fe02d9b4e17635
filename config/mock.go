/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package config

var (
	// MockObjectConfig is a subchunked director.
	MockObjectConfig = &TableConfig{
		Name:         "Object",
		Partitioning: PartitionDirector,
		SubChunked:   true,
		DirColName:   "objectId",
		LonColName:   "ra_PS",
		LatColName:   "decl_PS",
		LockInMem:    true,
		ScanRating:   1,
		Columns:      []string{"objectId", "ra_PS", "decl_PS", "someField", "flux_g", "flux_r", "pm_declErr", "chunkId", "subChunkId"},
	}

	// MockSourceConfig is a child of Object.
	MockSourceConfig = &TableConfig{
		Name:         "Source",
		Partitioning: PartitionChild,
		DirDb:        "LSST",
		DirTable:     "Object",
		DirColName:   "objectId",
		LonColName:   "ra",
		LatColName:   "decl",
		ScanRating:   2,
		Columns:      []string{"sourceId", "objectId", "ra", "decl", "flux", "filterId", "taiMidPoint"},
	}

	// MockSimRefObjectConfig is a second, chunk-level director.
	MockSimRefObjectConfig = &TableConfig{
		Name:         "SimRefObject",
		Partitioning: PartitionDirector,
		DirColName:   "refObjectId",
		LonColName:   "ra",
		LatColName:   "decl",
		ScanRating:   1,
		Columns:      []string{"refObjectId", "ra", "decl", "gMag"},
	}

	// MockRefObjMatchConfig matches Object to SimRefObject.
	MockRefObjMatchConfig = &TableConfig{
		Name:         "RefObjMatch",
		Partitioning: PartitionMatch,
		Match: &MatchConfig{
			DirTable1:   "Object",
			DirColName1: "objectId",
			DirTable2:   "SimRefObject",
			DirColName2: "refObjectId",
			FlagColName: "flags",
		},
		Columns: []string{"objectId", "refObjectId", "angSep", "flags"},
	}

	// MockFilterConfig is unpartitioned.
	MockFilterConfig = &TableConfig{
		Name:         "Filter",
		Partitioning: PartitionNone,
		Columns:      []string{"filterId", "filterName"},
	}

	// MockLSSTDatabaseConfig holds the LSST-like tables.
	MockLSSTDatabaseConfig = &DatabaseConfig{
		Name:           "LSST",
		PartitioningID: 1,
		Stripes:        18,
		SubStripes:     6,
		Overlap:        0.025,
		Tables: []*TableConfig{
			MockObjectConfig,
			MockSourceConfig,
			MockSimRefObjectConfig,
			MockRefObjMatchConfig,
			MockFilterConfig,
		},
	}

	// MockSdssDatabaseConfig is a whole-sky single-chunk database.
	MockSdssDatabaseConfig = &DatabaseConfig{
		Name:           "Sdss",
		PartitioningID: 2,
		Stripes:        1,
		SubStripes:     1,
		Overlap:        0.01,
		Tables: []*TableConfig{
			&TableConfig{
				Name:         "Object",
				Partitioning: PartitionDirector,
				DirColName:   "objectId",
				LonColName:   "ra",
				LatColName:   "decl",
				ScanRating:   1,
				Columns:      []string{"objectId", "ra", "decl", "someField"},
			},
		},
	}

	// MockPlannerConfig config.
	MockPlannerConfig = &PlannerConfig{
		DefaultDatabase:     "LSST",
		ScanRatingLimit:     3,
		SubChunksPerMessage: 4,
		MaxLogQueryLength:   256,
	}

	// MockCatalogConfig config.
	MockCatalogConfig = &CatalogConfig{
		MetaDir:     "/tmp/qplan-meta",
		IndexDriver: "mysql",
		IndexDb:     "qservMeta",
	}

	// MockLogConfig config.
	MockLogConfig = &LogConfig{
		Level: "DEBUG",
	}
)
