package bqsr

import "github.com/resolwebio/bio/process"

// Validation stringency choices, as accepted by GATK and Picard.
const (
	Strict  = "STRICT"
	Lenient = "LENIENT"
	Silent  = "SILENT"
)

// Descriptor describes the bqsr process to the host.
var Descriptor = process.Descriptor{
	Slug:            "bqsr",
	Name:            "BaseQualityScoreRecalibrator",
	Type:            "data:alignment:bam:bqsr:",
	Version:         "2.0.0",
	Category:        "BAM processing",
	Description:     "A two pass process of BaseRecalibrator and ApplyBQSR from GATK. Read groups may be replaced with AddOrReplaceReadGroups first.",
	SchedulingClass: process.Batch,
	Entity:          process.Entity{Type: "sample"},
	Requirements: process.Requirements{
		ExpressionEngine: "jinja",
		DockerImage:      "resolwebio/dnaseq:5.2.0",
	},
	DataName: `{{ bam|sample_name|default("?") }}`,
	Input: []process.Field{
		{
			Name:     "bam",
			Type:     process.DataType("alignment:bam"),
			Label:    "BAM file containing reads",
			Required: true,
		},
		{
			Name:     "reference",
			Type:     process.DataType("seq:nucleotide"),
			Label:    "Reference genome file",
			Required: true,
		},
		{
			Name:  "known_sites",
			Type:  process.ListOf(process.DataType("variants:vcf")),
			Label: "List of known sites of variation",
			Description: "One or more databases of known polymorphic sites used to exclude regions around known " +
				"polymorphisms from analysis.",
			Required: true,
		},
		{
			Name:  "intervals",
			Type:  process.DataType("bed"),
			Label: "One or more genomic intervals over which to operate.",
			Description: "This field is optional, but it can speed up the process by restricting calculations to " +
				"specific genome regions.",
		},
		{
			Name:  "read_group",
			Type:  process.TypeString,
			Label: "Replace read groups in BAM",
			Description: "Replace all read groups in the INPUT file with a single new read group and assign all " +
				"reads to it, using AddOrReplaceReadGroups. Input takes the form of -name=value delimited by " +
				`";", e.g. "-ID=1;-LB=GENIALIS;-PL=ILLUMINA;-PU=BARCODE;-SM=SAMPLENAME1". ` +
				"PL, LB, PU and SM are required.",
		},
		{
			Name:  "validation_stringency",
			Type:  process.TypeString,
			Label: "Validation stringency",
			Description: "Validation stringency for all SAM files read by this program. Setting stringency to " +
				"SILENT can improve performance when processing a BAM file in which variable-length data " +
				"(read, qualities, tags) do not otherwise need to be decoded.",
			Required: true,
			Default:  Strict,
			Choices: []process.Choice{
				{Label: Strict, Value: Strict},
				{Label: Lenient, Value: Lenient},
				{Label: Silent, Value: Silent},
			},
		},
	},
	Output: []process.Field{
		{Name: "bam", Type: process.TypeFile, Label: "Base quality score recalibrated BAM file", Required: true},
		{Name: "bai", Type: process.TypeFile, Label: "Index of base quality score recalibrated BAM file", Required: true},
		{Name: "stats", Type: process.TypeFile, Label: "Alignment statistics", Required: true},
		{Name: "bigwig", Type: process.TypeFile, Label: "BigWig file"},
		{Name: "species", Type: process.TypeString, Label: "Species", Required: true},
		{Name: "build", Type: process.TypeString, Label: "Build", Required: true},
		{Name: "recal_table", Type: process.TypeFile, Label: "Recalibration table", Required: true},
	},
}
