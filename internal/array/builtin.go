package array

// builtinEncodings returns every encoding vtable registered in a fresh
// Registry, canonical set first (spec.md §4.3) followed by the
// compressed set.
func builtinEncodings() []Encoding {
	encs := []Encoding{
		nullEncoding{},
		boolEncoding{},
		primitiveEncoding{},
		varBinViewEncoding{},
		structEncoding{},
		listEncoding{},
		extensionEncoding{},

		chunkedEncoding{},
		constantEncoding{},
		sparseEncoding{},
		dictEncoding{},
		runEndEncoding{},
		zigZagEncoding{},
		bitPackedEncoding{},
		forEncoding{},
		deltaEncoding{},
		dateTimePartsEncoding{},
		byteBoolEncoding{},
		alpEncoding{},
		alpRDEncoding{},
		fsstEncoding{},
	}
	names := make([]string, len(encs))
	for i, e := range encs {
		names[i] = e.ID().Name
	}
	markBuiltin(names...)
	return encs
}

// Well-known built-in encoding ids, exported for use by the layout/compute
// packages and by file-format readers resolving footer ids.
var (
	IDNull        = EncodingID{"vortex.null", 1}
	IDBool        = EncodingID{"vortex.bool", 2}
	IDPrimitive   = EncodingID{"vortex.primitive", 3}
	IDVarBinView  = EncodingID{"vortex.varbinview", 4}
	IDStruct      = EncodingID{"vortex.struct", 5}
	IDList        = EncodingID{"vortex.list", 6}
	IDExtension   = EncodingID{"vortex.extension", 7}

	IDChunked       = EncodingID{"vortex.chunked", 20}
	IDConstant      = EncodingID{"vortex.constant", 21}
	IDSparse        = EncodingID{"vortex.sparse", 22}
	IDDict          = EncodingID{"vortex.dict", 23}
	IDRunEnd        = EncodingID{"vortex.runend", 24}
	IDZigZag        = EncodingID{"vortex.zigzag", 25}
	IDBitPacked     = EncodingID{"vortex.bitpacked", 26}
	IDFoR           = EncodingID{"vortex.for", 27}
	IDDelta         = EncodingID{"vortex.delta", 28}
	IDDateTimeParts = EncodingID{"vortex.datetimeparts", 29}
	IDByteBool      = EncodingID{"vortex.bytebool", 30}
	IDALP           = EncodingID{"vortex.alp", 31}
	IDALPRD         = EncodingID{"vortex.alprd", 32}
	IDFSST          = EncodingID{"vortex.fsst", 33}
)
