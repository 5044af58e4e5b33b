package tag

import "github.com/FullMetalEd/fm-dicom/dicom/vr"

// Well-known tags used throughout the dataset management core.
//
// This is a curated subset of the full PS3.6 data dictionary, covering file
// meta information, patient/study/series/instance identity, the modality
// attributes referenced by the validation rules, and the directory record
// attributes needed by the DICOMDIR builder. Unlisted tags can still be read
// and written (VR comes from the stream when explicit, or defaults to
// Unknown under implicit VR); they simply will not resolve through Find.
var (
	FileMetaInformationGroupLength = New(0x0002, 0x0000)
	FileMetaInformationVersion     = New(0x0002, 0x0001)
	MediaStorageSOPClassUID        = New(0x0002, 0x0002)
	MediaStorageSOPInstanceUID     = New(0x0002, 0x0003)
	TransferSyntaxUID              = New(0x0002, 0x0010)
	ImplementationClassUID         = New(0x0002, 0x0012)
	ImplementationVersionName      = New(0x0002, 0x0013)
	SourceApplicationEntityTitle   = New(0x0002, 0x0016)

	SpecificCharacterSet  = New(0x0008, 0x0005)
	ImageType             = New(0x0008, 0x0008)
	SOPClassUID           = New(0x0008, 0x0016)
	SOPInstanceUID        = New(0x0008, 0x0018)
	StudyDate             = New(0x0008, 0x0020)
	SeriesDate            = New(0x0008, 0x0021)
	AcquisitionDate       = New(0x0008, 0x0022)
	ContentDate           = New(0x0008, 0x0023)
	StudyTime             = New(0x0008, 0x0030)
	SeriesTime            = New(0x0008, 0x0031)
	AcquisitionTime       = New(0x0008, 0x0032)
	PhysiciansOfRecord    = New(0x0008, 0x1048)
	AccessionNumber       = New(0x0008, 0x0050)
	Modality              = New(0x0008, 0x0060)
	Manufacturer          = New(0x0008, 0x0070)
	InstitutionName       = New(0x0008, 0x0080)
	InstitutionAddress    = New(0x0008, 0x0081)
	ReferringPhysicianName = New(0x0008, 0x0090)
	InstitutionalDepartmentName = New(0x0008, 0x1040)
	PerformingPhysicianName     = New(0x0008, 0x1050)
	OperatorsName               = New(0x0008, 0x1070)
	StudyDescription      = New(0x0008, 0x1030)
	SeriesDescription     = New(0x0008, 0x103E)
	TimezoneOffsetFromUTC = New(0x0008, 0x0201)
	InstanceCreationDate  = New(0x0008, 0x0012)
	InstanceCreationTime  = New(0x0008, 0x0013)
	ContentTime           = New(0x0008, 0x0033)

	PatientName             = New(0x0010, 0x0010)
	PatientID                = New(0x0010, 0x0020)
	PatientBirthDate         = New(0x0010, 0x0030)
	PatientBirthTime         = New(0x0010, 0x0032)
	PatientSex               = New(0x0010, 0x0040)
	PatientAge               = New(0x0010, 0x1010)
	PatientSize              = New(0x0010, 0x1020)
	PatientWeight            = New(0x0010, 0x1030)
	OtherPatientIDs          = New(0x0010, 0x1000)
	OtherPatientNames        = New(0x0010, 0x1001)
	EthnicGroup              = New(0x0010, 0x2160)
	PatientComments          = New(0x0010, 0x4000)
	PatientIdentityRemoved   = New(0x0012, 0x0062)
	DeidentificationMethod   = New(0x0012, 0x0063)

	SliceThickness = New(0x0018, 0x0050)
	RepetitionTime = New(0x0018, 0x0080)
	EchoTime       = New(0x0018, 0x0081)
	DeviceSerialNumber = New(0x0018, 0x1000)

	StudyInstanceUID  = New(0x0020, 0x000D)
	SeriesInstanceUID = New(0x0020, 0x000E)
	StudyID           = New(0x0020, 0x0010)
	SeriesNumber      = New(0x0020, 0x0011)
	InstanceNumber    = New(0x0020, 0x0013)
	FrameOfReferenceUID = New(0x0020, 0x0052)

	SamplesPerPixel      = New(0x0028, 0x0002)
	PhotometricInterpretation = New(0x0028, 0x0004)
	Rows                 = New(0x0028, 0x0010)
	Columns              = New(0x0028, 0x0011)
	BitsAllocated        = New(0x0028, 0x0100)
	BitsStored           = New(0x0028, 0x0101)
	HighBit              = New(0x0028, 0x0102)
	PixelRepresentation  = New(0x0028, 0x0103)

	PixelData = New(0x7FE0, 0x0010)

	// Media storage directory (PS3.10 DICOMDIR) attributes.
	FileSetID                                              = New(0x0004, 0x1130)
	FileSetDescriptorFileID                                = New(0x0004, 0x1141)
	SpecificCharacterSetOfFileSetDescriptorFile             = New(0x0004, 0x1142)
	OffsetOfTheFirstDirectoryRecordOfTheRootDirectoryEntity = New(0x0004, 0x1200)
	OffsetOfTheLastDirectoryRecordOfTheRootDirectoryEntity  = New(0x0004, 0x1202)
	FileSetConsistencyFlag                                  = New(0x0004, 0x1212)
	DirectoryRecordSequence                                 = New(0x0004, 0x1220)
	OffsetOfTheNextDirectoryRecord                          = New(0x0004, 0x1400)
	RecordInUseFlag                                         = New(0x0004, 0x1410)
	OffsetOfReferencedLowerLevelDirectoryEntity             = New(0x0004, 0x1420)
	DirectoryRecordType                                     = New(0x0004, 0x1430)
	ReferencedFileID                                        = New(0x0004, 0x1500)
	ReferencedSOPClassUIDInFile                             = New(0x0004, 0x1510)
	ReferencedSOPInstanceUIDInFile                          = New(0x0004, 0x1511)
	ReferencedTransferSyntaxUIDInFile                       = New(0x0004, 0x1512)
)

// TagDict holds dictionary metadata for the curated tag set above.
//
// DICOM Standard Reference:
// https://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_6
var TagDict = map[Tag]Info{
	FileMetaInformationGroupLength: {FileMetaInformationGroupLength, []vr.VR{vr.UnsignedLong}, "File Meta Information Group Length", "FileMetaInformationGroupLength", "1", false},
	FileMetaInformationVersion:     {FileMetaInformationVersion, []vr.VR{vr.OtherByte}, "File Meta Information Version", "FileMetaInformationVersion", "1", false},
	MediaStorageSOPClassUID:        {MediaStorageSOPClassUID, []vr.VR{vr.UniqueIdentifier}, "Media Storage SOP Class UID", "MediaStorageSOPClassUID", "1", false},
	MediaStorageSOPInstanceUID:     {MediaStorageSOPInstanceUID, []vr.VR{vr.UniqueIdentifier}, "Media Storage SOP Instance UID", "MediaStorageSOPInstanceUID", "1", false},
	TransferSyntaxUID:              {TransferSyntaxUID, []vr.VR{vr.UniqueIdentifier}, "Transfer Syntax UID", "TransferSyntaxUID", "1", false},
	ImplementationClassUID:         {ImplementationClassUID, []vr.VR{vr.UniqueIdentifier}, "Implementation Class UID", "ImplementationClassUID", "1", false},
	ImplementationVersionName:      {ImplementationVersionName, []vr.VR{vr.ShortString}, "Implementation Version Name", "ImplementationVersionName", "1", false},
	SourceApplicationEntityTitle:   {SourceApplicationEntityTitle, []vr.VR{vr.ApplicationEntity}, "Source Application Entity Title", "SourceApplicationEntityTitle", "1", false},

	SpecificCharacterSet:   {SpecificCharacterSet, []vr.VR{vr.CodeString}, "Specific Character Set", "SpecificCharacterSet", "1-n", false},
	ImageType:              {ImageType, []vr.VR{vr.CodeString}, "Image Type", "ImageType", "2-n", false},
	SOPClassUID:            {SOPClassUID, []vr.VR{vr.UniqueIdentifier}, "SOP Class UID", "SOPClassUID", "1", false},
	SOPInstanceUID:         {SOPInstanceUID, []vr.VR{vr.UniqueIdentifier}, "SOP Instance UID", "SOPInstanceUID", "1", false},
	StudyDate:              {StudyDate, []vr.VR{vr.Date}, "Study Date", "StudyDate", "1", false},
	SeriesDate:             {SeriesDate, []vr.VR{vr.Date}, "Series Date", "SeriesDate", "1", false},
	AcquisitionDate:        {AcquisitionDate, []vr.VR{vr.Date}, "Acquisition Date", "AcquisitionDate", "1", false},
	ContentDate:            {ContentDate, []vr.VR{vr.Date}, "Content Date", "ContentDate", "1", false},
	StudyTime:              {StudyTime, []vr.VR{vr.Time}, "Study Time", "StudyTime", "1", false},
	SeriesTime:             {SeriesTime, []vr.VR{vr.Time}, "Series Time", "SeriesTime", "1", false},
	AcquisitionTime:        {AcquisitionTime, []vr.VR{vr.Time}, "Acquisition Time", "AcquisitionTime", "1", false},
	PhysiciansOfRecord:     {PhysiciansOfRecord, []vr.VR{vr.PersonName}, "Physician(s) of Record", "PhysiciansOfRecord", "1-n", false},
	AccessionNumber:        {AccessionNumber, []vr.VR{vr.ShortString}, "Accession Number", "AccessionNumber", "1", false},
	Modality:               {Modality, []vr.VR{vr.CodeString}, "Modality", "Modality", "1", false},
	Manufacturer:           {Manufacturer, []vr.VR{vr.LongString}, "Manufacturer", "Manufacturer", "1", false},
	InstitutionName:        {InstitutionName, []vr.VR{vr.LongString}, "Institution Name", "InstitutionName", "1", false},
	ReferringPhysicianName: {ReferringPhysicianName, []vr.VR{vr.PersonName}, "Referring Physician's Name", "ReferringPhysicianName", "1", false},
	InstitutionAddress:     {InstitutionAddress, []vr.VR{vr.ShortText}, "Institution Address", "InstitutionAddress", "1", false},
	InstitutionalDepartmentName: {InstitutionalDepartmentName, []vr.VR{vr.LongString}, "Institutional Department Name", "InstitutionalDepartmentName", "1", false},
	PerformingPhysicianName:     {PerformingPhysicianName, []vr.VR{vr.PersonName}, "Performing Physician's Name", "PerformingPhysicianName", "1-n", false},
	OperatorsName:               {OperatorsName, []vr.VR{vr.PersonName}, "Operators' Name", "OperatorsName", "1-n", false},
	StudyDescription:       {StudyDescription, []vr.VR{vr.LongString}, "Study Description", "StudyDescription", "1", false},
	SeriesDescription:      {SeriesDescription, []vr.VR{vr.LongString}, "Series Description", "SeriesDescription", "1", false},
	TimezoneOffsetFromUTC:  {TimezoneOffsetFromUTC, []vr.VR{vr.ShortString}, "Timezone Offset From UTC", "TimezoneOffsetFromUTC", "1", false},
	InstanceCreationDate:   {InstanceCreationDate, []vr.VR{vr.Date}, "Instance Creation Date", "InstanceCreationDate", "1", false},
	InstanceCreationTime:   {InstanceCreationTime, []vr.VR{vr.Time}, "Instance Creation Time", "InstanceCreationTime", "1", false},
	ContentTime:            {ContentTime, []vr.VR{vr.Time}, "Content Time", "ContentTime", "1", false},

	PatientName:            {PatientName, []vr.VR{vr.PersonName}, "Patient's Name", "PatientName", "1", false},
	PatientID:              {PatientID, []vr.VR{vr.LongString}, "Patient ID", "PatientID", "1", false},
	PatientBirthDate:       {PatientBirthDate, []vr.VR{vr.Date}, "Patient's Birth Date", "PatientBirthDate", "1", false},
	PatientBirthTime:       {PatientBirthTime, []vr.VR{vr.Time}, "Patient's Birth Time", "PatientBirthTime", "1", false},
	PatientSex:             {PatientSex, []vr.VR{vr.CodeString}, "Patient's Sex", "PatientSex", "1", false},
	PatientAge:             {PatientAge, []vr.VR{vr.AgeString}, "Patient's Age", "PatientAge", "1", false},
	PatientSize:            {PatientSize, []vr.VR{vr.DecimalString}, "Patient's Size", "PatientSize", "1", false},
	PatientWeight:          {PatientWeight, []vr.VR{vr.DecimalString}, "Patient's Weight", "PatientWeight", "1", false},
	OtherPatientIDs:        {OtherPatientIDs, []vr.VR{vr.LongString}, "Other Patient IDs", "OtherPatientIDs", "1-n", true},
	OtherPatientNames:      {OtherPatientNames, []vr.VR{vr.PersonName}, "Other Patient Names", "OtherPatientNames", "1-n", false},
	EthnicGroup:            {EthnicGroup, []vr.VR{vr.ShortString}, "Ethnic Group", "EthnicGroup", "1", false},
	PatientComments:        {PatientComments, []vr.VR{vr.LongText}, "Patient Comments", "PatientComments", "1", false},
	PatientIdentityRemoved: {PatientIdentityRemoved, []vr.VR{vr.CodeString}, "Patient Identity Removed", "PatientIdentityRemoved", "1", false},
	DeidentificationMethod: {DeidentificationMethod, []vr.VR{vr.LongString}, "De-identification Method", "DeidentificationMethod", "1-n", false},

	SliceThickness:     {SliceThickness, []vr.VR{vr.DecimalString}, "Slice Thickness", "SliceThickness", "1", false},
	RepetitionTime:     {RepetitionTime, []vr.VR{vr.DecimalString}, "Repetition Time", "RepetitionTime", "1", false},
	EchoTime:           {EchoTime, []vr.VR{vr.DecimalString}, "Echo Time", "EchoTime", "1", false},
	DeviceSerialNumber: {DeviceSerialNumber, []vr.VR{vr.LongString}, "Device Serial Number", "DeviceSerialNumber", "1", false},

	StudyInstanceUID:    {StudyInstanceUID, []vr.VR{vr.UniqueIdentifier}, "Study Instance UID", "StudyInstanceUID", "1", false},
	SeriesInstanceUID:   {SeriesInstanceUID, []vr.VR{vr.UniqueIdentifier}, "Series Instance UID", "SeriesInstanceUID", "1", false},
	StudyID:             {StudyID, []vr.VR{vr.ShortString}, "Study ID", "StudyID", "1", false},
	SeriesNumber:        {SeriesNumber, []vr.VR{vr.IntegerString}, "Series Number", "SeriesNumber", "1", false},
	InstanceNumber:      {InstanceNumber, []vr.VR{vr.IntegerString}, "Instance Number", "InstanceNumber", "1", false},
	FrameOfReferenceUID: {FrameOfReferenceUID, []vr.VR{vr.UniqueIdentifier}, "Frame of Reference UID", "FrameOfReferenceUID", "1", false},

	SamplesPerPixel:           {SamplesPerPixel, []vr.VR{vr.UnsignedShort}, "Samples per Pixel", "SamplesPerPixel", "1", false},
	PhotometricInterpretation: {PhotometricInterpretation, []vr.VR{vr.CodeString}, "Photometric Interpretation", "PhotometricInterpretation", "1", false},
	Rows:                      {Rows, []vr.VR{vr.UnsignedShort}, "Rows", "Rows", "1", false},
	Columns:                   {Columns, []vr.VR{vr.UnsignedShort}, "Columns", "Columns", "1", false},
	BitsAllocated:             {BitsAllocated, []vr.VR{vr.UnsignedShort}, "Bits Allocated", "BitsAllocated", "1", false},
	BitsStored:                {BitsStored, []vr.VR{vr.UnsignedShort}, "Bits Stored", "BitsStored", "1", false},
	HighBit:                   {HighBit, []vr.VR{vr.UnsignedShort}, "High Bit", "HighBit", "1", false},
	PixelRepresentation:       {PixelRepresentation, []vr.VR{vr.UnsignedShort}, "Pixel Representation", "PixelRepresentation", "1", false},

	PixelData: {PixelData, []vr.VR{vr.OtherByte, vr.OtherWord}, "Pixel Data", "PixelData", "1", false},

	FileSetID:                       {FileSetID, []vr.VR{vr.CodeString}, "File-set ID", "FileSetID", "1", false},
	FileSetDescriptorFileID:         {FileSetDescriptorFileID, []vr.VR{vr.CodeString}, "File-set Descriptor File ID", "FileSetDescriptorFileID", "1-8", false},
	SpecificCharacterSetOfFileSetDescriptorFile: {SpecificCharacterSetOfFileSetDescriptorFile, []vr.VR{vr.CodeString}, "Specific Character Set of File-set Descriptor File", "SpecificCharacterSetOfFileSetDescriptorFile", "1", false},
	OffsetOfTheFirstDirectoryRecordOfTheRootDirectoryEntity: {OffsetOfTheFirstDirectoryRecordOfTheRootDirectoryEntity, []vr.VR{vr.UnsignedLong}, "Offset of the First Directory Record of the Root Directory Entity", "OffsetOfTheFirstDirectoryRecordOfTheRootDirectoryEntity", "1", false},
	OffsetOfTheLastDirectoryRecordOfTheRootDirectoryEntity:  {OffsetOfTheLastDirectoryRecordOfTheRootDirectoryEntity, []vr.VR{vr.UnsignedLong}, "Offset of the Last Directory Record of the Root Directory Entity", "OffsetOfTheLastDirectoryRecordOfTheRootDirectoryEntity", "1", false},
	FileSetConsistencyFlag:                                  {FileSetConsistencyFlag, []vr.VR{vr.UnsignedShort}, "File-set Consistency Flag", "FileSetConsistencyFlag", "1", false},
	DirectoryRecordSequence:                                 {DirectoryRecordSequence, []vr.VR{vr.SequenceOfItems}, "Directory Record Sequence", "DirectoryRecordSequence", "1", false},
	OffsetOfTheNextDirectoryRecord:                           {OffsetOfTheNextDirectoryRecord, []vr.VR{vr.UnsignedLong}, "Offset of the Next Directory Record", "OffsetOfTheNextDirectoryRecord", "1", false},
	RecordInUseFlag:                                          {RecordInUseFlag, []vr.VR{vr.UnsignedShort}, "Record In-use Flag", "RecordInUseFlag", "1", false},
	OffsetOfReferencedLowerLevelDirectoryEntity:              {OffsetOfReferencedLowerLevelDirectoryEntity, []vr.VR{vr.UnsignedLong}, "Offset of Referenced Lower-Level Directory Entity", "OffsetOfReferencedLowerLevelDirectoryEntity", "1", false},
	DirectoryRecordType:                                      {DirectoryRecordType, []vr.VR{vr.CodeString}, "Directory Record Type", "DirectoryRecordType", "1", false},
	ReferencedFileID:                                         {ReferencedFileID, []vr.VR{vr.CodeString}, "Referenced File ID", "ReferencedFileID", "1-8", false},
	ReferencedSOPClassUIDInFile:                              {ReferencedSOPClassUIDInFile, []vr.VR{vr.UniqueIdentifier}, "Referenced SOP Class UID in File", "ReferencedSOPClassUIDInFile", "1", false},
	ReferencedSOPInstanceUIDInFile:                           {ReferencedSOPInstanceUIDInFile, []vr.VR{vr.UniqueIdentifier}, "Referenced SOP Instance UID in File", "ReferencedSOPInstanceUIDInFile", "1", false},
	ReferencedTransferSyntaxUIDInFile:                        {ReferencedTransferSyntaxUIDInFile, []vr.VR{vr.UniqueIdentifier}, "Referenced Transfer Syntax UID in File", "ReferencedTransferSyntaxUIDInFile", "1", false},
}
